// Package catalog provides the statement catalog: the built-in Redshift
// statements embedded from sql/ and YAML override files.
//
// COPY statements are text/template sources. Render fills them with
// CopyParams; the literal function quotes a value as a SQL string literal.
// A statement's source picks the S3 input, and the credentials resolver runs
// only when a template asks for .Credentials.
package catalog
