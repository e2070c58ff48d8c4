package sl

import "log/slog"

// Err returns a slog attribute for an error value.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Module tags log records with the component that produced them.
func Module(name string) slog.Attr {
	return slog.String("module", name)
}

// Secret logs a sensitive value keeping only its first characters.
func Secret(key, value string) slog.Attr {
	if len(value) > 4 {
		value = value[:4] + "..."
	}
	return slog.String(key, value)
}
