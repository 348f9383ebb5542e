package db

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

func TestBuildConnectionString_FiveValuesInOrder(t *testing.T) {
	cfg := &dwh.ClusterConfig{
		Host:     "dwhcluster.c1.us-west-2.redshift.amazonaws.com",
		DBName:   "dwh",
		User:     "dwhuser",
		Password: "Passw0rd",
		Port:     5439,
	}

	got := BuildConnectionString(cfg)

	assert.Equal(t,
		"host=dwhcluster.c1.us-west-2.redshift.amazonaws.com dbname=dwh user=dwhuser password=Passw0rd port=5439",
		got)
}

func TestBuildConnectionString_OrderIndependentOfOptionalFields(t *testing.T) {
	cfg := &dwh.ClusterConfig{
		Host:           "h",
		DBName:         "d",
		User:           "u",
		Password:       "p",
		Port:           1,
		SSLMode:        "require",
		AppName:        "sparkify-dwh",
		ConnectTimeout: 10 * time.Second,
	}

	got := BuildConnectionString(cfg)

	assert.True(t, strings.HasPrefix(got, "host=h dbname=d user=u password=p port=1 "), got)
	assert.True(t, strings.HasSuffix(got, "sslmode=require application_name=sparkify-dwh connect_timeout=10"), got)
}

func TestBuildConnectionString_Quoting(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"space", "pass word", `password='pass word'`},
		{"single quote", "it's", `password='it\'s'`},
		{"backslash", `a\b`, `password='a\\b'`},
		{"empty", "", `password=''`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &dwh.ClusterConfig{Host: "h", DBName: "d", User: "u", Password: tt.password, Port: 5439}
			assert.Contains(t, BuildConnectionString(cfg), tt.want)
		})
	}
}

func TestRedactedConnectionString(t *testing.T) {
	cfg := &dwh.ClusterConfig{Host: "h", DBName: "d", User: "u", Password: "secret", Port: 5439}

	got := RedactedConnectionString(cfg)
	assert.NotContains(t, got, "secret")
	assert.Contains(t, got, "password=xxxxxxx")
	assert.Equal(t, "secret", cfg.Password, "original config untouched")
}

func TestBuildConnectionString_ConnectTimeoutRoundsUp(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    string
	}{
		{500 * time.Millisecond, "connect_timeout=1"},
		{time.Second, "connect_timeout=1"},
		{1500 * time.Millisecond, "connect_timeout=2"},
		{30 * time.Second, "connect_timeout=30"},
	}

	for _, tt := range tests {
		t.Run(tt.timeout.String(), func(t *testing.T) {
			cfg := &dwh.ClusterConfig{Host: "h", DBName: "d", User: "u", Password: "p", Port: 5439, ConnectTimeout: tt.timeout}
			got := BuildConnectionString(cfg)
			assert.True(t, strings.HasSuffix(got, tt.want), got)
			assert.NotContains(t, got, "connect_timeout=0")
		})
	}
}
