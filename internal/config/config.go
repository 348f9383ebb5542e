// Package config loads the warehouse settings file.
//
// Two formats are accepted, chosen by file extension:
//   - INI (dwh.cfg and anything that is not YAML): sections CLUSTER, IAM_ROLE and S3
//   - YAML (*.yaml, *.yml): keys cluster, iam_role and s3
//
// Keys are always read by name. DWH_* environment variables override file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the settings file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("settings file not found")

// Environment variables that override file values.
const (
	EnvHost       = "DWH_HOST"
	EnvDBName     = "DWH_DBNAME"
	EnvUser       = "DWH_USER"
	EnvPassword   = "DWH_PASSWORD"
	EnvPort       = "DWH_PORT"
	EnvIAMRoleARN = "DWH_IAM_ROLE_ARN"
)

type ClusterSection struct {
	Host           string `yaml:"host"`
	DBName         string `yaml:"dbname"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	Port           string `yaml:"port"`
	SSLMode        string `yaml:"sslmode,omitempty"`
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

type IAMRoleSection struct {
	ARN string `yaml:"arn"`
}

type S3Section struct {
	LogData     string `yaml:"log_data"`
	LogJSONPath string `yaml:"log_jsonpath"`
	SongData    string `yaml:"song_data"`
	Region      string `yaml:"region,omitempty"`
}

// File is the raw, unvalidated content of a settings file.
type File struct {
	Cluster ClusterSection `yaml:"cluster"`
	IAMRole IAMRoleSection `yaml:"iam_role"`
	S3      S3Section      `yaml:"s3"`
}

// Load reads, merges with the environment, and validates the settings at path.
func Load(path string) (*dwh.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigNotFound, path, dwh.ErrInvalidConfig)
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	var file *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		file, err = ParseYAML(data)
	default:
		file, err = ParseINI(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	ApplyEnv(file, os.LookupEnv)

	settings, err := file.Settings()
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}
	return settings, nil
}

// ParseYAML decodes the YAML settings layout.
func ParseYAML(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", dwh.ErrInvalidConfig, err)
	}
	return &f, nil
}

// iniAliases maps each field to the key names accepted in the INI layout.
// Lookups are case-insensitive.
var iniAliases = struct {
	host, dbname, user, password, port, sslmode, timeout []string
}{
	host:     []string{"host"},
	dbname:   []string{"dbname", "db_name"},
	user:     []string{"user", "db_user"},
	password: []string{"password", "db_password"},
	port:     []string{"port", "db_port"},
	sslmode:  []string{"sslmode"},
	timeout:  []string{"connect_timeout"},
}

// ParseINI decodes the dwh.cfg layout.
func ParseINI(data []byte) (*File, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", dwh.ErrInvalidConfig, err)
	}
	if !cfg.HasSection("cluster") {
		return nil, fmt.Errorf("missing [CLUSTER] section: %w", dwh.ErrInvalidConfig)
	}

	cluster := cfg.Section("cluster")
	iam := cfg.Section("iam_role")
	s3 := cfg.Section("s3")

	return &File{
		Cluster: ClusterSection{
			Host:           lookup(cluster, iniAliases.host),
			DBName:         lookup(cluster, iniAliases.dbname),
			User:           lookup(cluster, iniAliases.user),
			Password:       lookup(cluster, iniAliases.password),
			Port:           lookup(cluster, iniAliases.port),
			SSLMode:        lookup(cluster, iniAliases.sslmode),
			ConnectTimeout: lookup(cluster, iniAliases.timeout),
		},
		IAMRole: IAMRoleSection{
			ARN: lookup(iam, []string{"arn"}),
		},
		S3: S3Section{
			LogData:     lookup(s3, []string{"log_data"}),
			LogJSONPath: lookup(s3, []string{"log_jsonpath", "log_json_path"}),
			SongData:    lookup(s3, []string{"song_data"}),
			Region:      lookup(s3, []string{"region"}),
		},
	}, nil
}

func lookup(sec *ini.Section, names []string) string {
	for _, n := range names {
		if sec.HasKey(n) {
			return strings.TrimSpace(sec.Key(n).String())
		}
	}
	return ""
}

// ApplyEnv overrides file values with any DWH_* variables that are set.
func ApplyEnv(f *File, lookupEnv func(string) (string, bool)) {
	overrides := []struct {
		env string
		dst *string
	}{
		{EnvHost, &f.Cluster.Host},
		{EnvDBName, &f.Cluster.DBName},
		{EnvUser, &f.Cluster.User},
		{EnvPassword, &f.Cluster.Password},
		{EnvPort, &f.Cluster.Port},
		{EnvIAMRoleARN, &f.IAMRole.ARN},
	}
	for _, o := range overrides {
		if v, ok := lookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}
}

// Settings converts the raw file into typed settings, applying defaults.
func (f *File) Settings() (*dwh.Settings, error) {
	var errs []error

	port := dwh.DefaultPort
	if p := strings.TrimSpace(f.Cluster.Port); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid port %q: %w", p, dwh.ErrInvalidConfig))
		} else {
			port = n
		}
	}

	timeout, err := parseTimeout(f.Cluster.ConnectTimeout)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	sslMode := f.Cluster.SSLMode
	if sslMode == "" {
		sslMode = dwh.DefaultSSLMode
	}
	region := f.S3.Region
	if region == "" {
		region = dwh.DefaultRegion
	}

	return &dwh.Settings{
		Cluster: dwh.ClusterConfig{
			Host:           f.Cluster.Host,
			DBName:         f.Cluster.DBName,
			User:           f.Cluster.User,
			Password:       f.Cluster.Password,
			Port:           port,
			SSLMode:        sslMode,
			AppName:        dwh.DefaultAppName,
			ConnectTimeout: timeout,
		},
		IAMRole: dwh.IAMRoleConfig{ARN: f.IAMRole.ARN},
		S3: dwh.S3Config{
			LogData:     f.S3.LogData,
			LogJSONPath: f.S3.LogJSONPath,
			SongData:    f.S3.SongData,
			Region:      region,
		},
	}, nil
}

// parseTimeout accepts a Go duration ("30s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid connect_timeout %q: %w", v, dwh.ErrInvalidConfig)
	}
	return d, nil
}
