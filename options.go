package xlrule

import (
	"io"
	"log/slog"
)

// Options holds configuration for a Workbook.
type Options struct {
	defaultSheet    string
	password        string
	formattedValues bool
	logger          *slog.Logger
}

func defaultOptions() *Options {
	return &Options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures a Workbook.
type Option func(*Options)

// WithDefaultSheet sets the sheet used for references without a sheet prefix
// (default: the workbook's active sheet).
func WithDefaultSheet(sheet string) Option {
	return func(o *Options) { o.defaultSheet = sheet }
}

// WithPassword sets the password for encrypted workbooks.
func WithPassword(password string) Option {
	return func(o *Options) { o.password = password }
}

// WithFormattedValues reads cell text as displayed (number formats applied)
// instead of the stored raw value.
func WithFormattedValues(formatted bool) Option {
	return func(o *Options) { o.formattedValues = formatted }
}

// WithLogger sets the logger for workbook reads. Nil loggers are ignored.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
