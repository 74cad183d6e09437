package main

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shapestone/shape-csvstream/pkg/csv"
	"github.com/shapestone/shape-csvstream/pkg/source"
)

const envPrefix = "CSVDECODE"

// Flag and config keys.
const (
	keyConfig      = "config"
	keyNoHeaders   = "no-headers"
	keySkipInvalid = "skip-invalid"
	keyDelimiter   = "delimiter"
	keyQuote       = "quote"
	keyEncoding    = "encoding"
	keyDecompress  = "decompress"
	keyRegion      = "region"
	keyCredentials = "gcs-credentials"
	keyLogLevel    = "log-level"
	keyLogFormat   = "log-format"
	keyMetricsAddr = "metrics-addr"
)

func registerFlags(fs *pflag.FlagSet) {
	fs.String(keyConfig, "", "Path to a YAML, JSON or TOML config file")
	fs.Bool(keyNoHeaders, false, "Treat the first row as data instead of column names")
	fs.Bool(keySkipInvalid, false, "Drop rows whose field count differs from the first row")
	fs.String(keyDelimiter, ",", "Field delimiter (one ASCII character)")
	fs.String(keyQuote, `"`, "Escape character (one ASCII character)")
	fs.String(keyEncoding, "utf-8", "Text encoding of the input (WHATWG name, e.g. latin1)")
	fs.String(keyDecompress, "auto", "Decompression: auto, none, gzip, zstd, s2, snappy or lz4")
	fs.String(keyRegion, "", "AWS region for s3:// sources")
	fs.String(keyCredentials, "", "Service account file for gs:// sources")
	fs.String(keyLogLevel, "warn", "Log level (debug, info, warn, error)")
	fs.String(keyLogFormat, "console", "Log format (console or json)")
	fs.String(keyMetricsAddr, "", "Serve Prometheus metrics on this address while running, e.g. :9090")
}

// newViper binds fs, the CSVDECODE_* environment and the optional config file.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	if path := v.GetString(keyConfig); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// readerOptions builds csv.Options from the bound settings.
func readerOptions(v *viper.Viper) (csv.Options, error) {
	opts := csv.DefaultOptions()
	opts.HasHeaders = !v.GetBool(keyNoHeaders)
	opts.SkipInvalidRows = v.GetBool(keySkipInvalid)

	var err error
	if opts.Delimiter, err = singleRune(keyDelimiter, v.GetString(keyDelimiter)); err != nil {
		return opts, err
	}
	if opts.EscapeCharacter, err = singleRune(keyQuote, v.GetString(keyQuote)); err != nil {
		return opts, err
	}
	if opts.Encoding, err = csv.LookupEncoding(v.GetString(keyEncoding)); err != nil {
		return opts, err
	}
	return opts, opts.Validate()
}

// sourceOptions builds source.Open options from the bound settings.
func sourceOptions(v *viper.Viper) ([]source.Option, error) {
	codec, err := source.ParseCodec(v.GetString(keyDecompress))
	if err != nil {
		return nil, err
	}
	opts := []source.Option{source.WithDecompression(codec)}
	if region := v.GetString(keyRegion); region != "" {
		opts = append(opts, source.WithRegion(region))
	}
	if creds := v.GetString(keyCredentials); creds != "" {
		opts = append(opts, source.WithCredentialsFile(creds))
	}
	return opts, nil
}

func singleRune(key, s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("--%s must be exactly one character, got %q", key, s)
	}
	return r, nil
}
