package catalog

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/vvka-141/sparkify-dwh/pkg/dwh"
)

//go:embed sql
var sqlFS embed.FS

// Table order for creation. Staging tables come first; drops run in reverse.
var createOrder = []string{
	"staging_events",
	"staging_songs",
	"songplays",
	"users",
	"songs",
	"artists",
	"time",
}

// time is derived from songplays.start_time, so songplays is inserted first.
var insertOrder = []string{
	"songplays",
	"users",
	"songs",
	"artists",
	"time",
}

var copyOrder = []string{
	"staging_events",
	"staging_songs",
}

// JSONPathAuto lets COPY map JSON keys to column names.
const JSONPathAuto = "auto"

// CopyParams are the values available to COPY statement templates.
type CopyParams struct {
	Source   string
	JSONPath string
	Region   string

	credentials *credentialCache
}

// Credentials returns the COPY authorization clause. The resolver runs the
// first time a template references it.
func (p CopyParams) Credentials() (string, error) {
	return p.credentials.get()
}

// copySources maps the built-in staging tables to their S3 input.
var copySources = map[string]string{
	"staging_events": dwh.SourceLog,
	"staging_songs":  dwh.SourceSong,
}

type credentialCache struct {
	ctx      context.Context
	resolver dwh.CredentialsResolver
	done     bool
	clause   string
	err      error
}

func (c *credentialCache) get() (string, error) {
	if c.done {
		return c.clause, c.err
	}
	c.done = true
	if c.resolver == nil {
		c.err = errors.New("no credentials resolver configured")
		return "", c.err
	}
	c.clause, c.err = c.resolver.CopyCredentials(c.ctx)
	return c.clause, c.err
}

// Embedded returns the built-in Redshift catalog. COPY statements are still
// unrendered templates; pass the result to Render.
func Embedded() (dwh.Catalog, error) {
	var cat dwh.Catalog

	for i := len(createOrder) - 1; i >= 0; i-- {
		table := createOrder[i]
		cat.Drop = append(cat.Drop, dwh.Statement{
			Name: table,
			SQL:  "DROP TABLE IF EXISTS " + table,
		})
	}

	for _, table := range createOrder {
		stmt, err := readStatement("sql/create/"+table+".sql", table)
		if err != nil {
			return dwh.Catalog{}, err
		}
		cat.Create = append(cat.Create, stmt)
	}

	for _, table := range copyOrder {
		stmt, err := readStatement("sql/copy/"+table+".sql.tmpl", table)
		if err != nil {
			return dwh.Catalog{}, err
		}
		stmt.Source = copySources[table]
		cat.Copy = append(cat.Copy, stmt)
	}

	for _, table := range insertOrder {
		stmt, err := readStatement("sql/insert/"+table+".sql", table)
		if err != nil {
			return dwh.Catalog{}, err
		}
		cat.Insert = append(cat.Insert, stmt)
	}

	return cat, nil
}

// Build returns the built-in catalog with COPY statements rendered for settings.
func Build(ctx context.Context, settings *dwh.Settings, creds dwh.CredentialsResolver) (dwh.Catalog, error) {
	cat, err := Embedded()
	if err != nil {
		return dwh.Catalog{}, err
	}
	return Render(ctx, cat, settings, creds)
}

// Render executes every COPY statement of cat as a text/template with the
// source paths, region and credentials clause for its S3 input. Statements
// without template actions come out unchanged. Credentials are resolved at
// most once, and only if a template references .Credentials.
func Render(ctx context.Context, cat dwh.Catalog, settings *dwh.Settings, creds dwh.CredentialsResolver) (dwh.Catalog, error) {
	if len(cat.Copy) == 0 {
		return cat, cat.Validate()
	}

	cache := &credentialCache{ctx: ctx, resolver: creds}

	rendered := make([]dwh.Statement, 0, len(cat.Copy))
	for i, stmt := range cat.Copy {
		params, err := paramsFor(stmt, settings)
		if err != nil {
			return dwh.Catalog{}, fmt.Errorf("copy statement %d (%q): %w", i, stmt.Name, err)
		}
		params.credentials = cache

		sql, err := renderTemplate(stmt, params)
		if err != nil {
			if cache.err != nil {
				return dwh.Catalog{}, fmt.Errorf("failed to resolve COPY credentials: %w", cache.err)
			}
			return dwh.Catalog{}, fmt.Errorf("copy statement %d (%q): %w: %w", i, stmt.Name, dwh.ErrCatalogInvalid, err)
		}
		rendered = append(rendered, dwh.Statement{Name: stmt.Name, Source: stmt.Source, SQL: sql})
	}
	cat.Copy = rendered

	return cat, cat.Validate()
}

// paramsFor picks the S3 input of a COPY statement: its explicit source, or
// the built-in staging table it is named after. Event logs use the JSONPaths
// file; song data maps keys automatically.
func paramsFor(stmt dwh.Statement, settings *dwh.Settings) (CopyParams, error) {
	source := stmt.Source
	if source == "" {
		source = copySources[stmt.Name]
	}

	s3 := settings.S3
	switch source {
	case dwh.SourceLog:
		return CopyParams{Source: s3.LogData, JSONPath: s3.LogJSONPath, Region: s3.Region}, nil
	case dwh.SourceSong:
		return CopyParams{Source: s3.SongData, JSONPath: JSONPathAuto, Region: s3.Region}, nil
	case "":
		return CopyParams{}, fmt.Errorf("no S3 source for %q; set source to %s or %s: %w",
			stmt.Name, dwh.SourceLog, dwh.SourceSong, dwh.ErrCatalogInvalid)
	default:
		return CopyParams{}, fmt.Errorf("unknown source %q: %w", source, dwh.ErrCatalogInvalid)
	}
}

var funcs = template.FuncMap{
	"literal": quoteLiteral,
}

func renderTemplate(stmt dwh.Statement, params CopyParams) (string, error) {
	tmpl, err := template.New(stmt.Name).Funcs(funcs).Option("missingkey=error").Parse(stmt.SQL)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func readStatement(path, name string) (dwh.Statement, error) {
	content, err := sqlFS.ReadFile(path)
	if err != nil {
		return dwh.Statement{}, fmt.Errorf("embedded statement %s: %w", path, err)
	}
	return dwh.Statement{Name: name, SQL: strings.TrimSpace(string(content))}, nil
}

// quoteLiteral renders s as a SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
