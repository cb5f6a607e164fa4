package config

import (
	"flag"
	"fmt"
	"io"
)

// flags holds command-line values. Only flags that were given override the
// other sources.
type flags struct {
	configPath string
	dsn        string
	addr       string
	adminUser  string
	logPath    string
}

func (f *flags) flagSet(usage io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("dijaskidom", flag.ContinueOnError)
	fs.SetOutput(usage)

	fs.StringVar(&f.configPath, "config", "", "")
	fs.StringVar(&f.configPath, "c", "", "")

	fs.StringVar(&f.dsn, "db", "", "")
	fs.StringVar(&f.dsn, "d", "", "")

	fs.StringVar(&f.addr, "addr", "", "")
	fs.StringVar(&f.addr, "a", "", "")

	fs.StringVar(&f.adminUser, "user", "", "")
	fs.StringVar(&f.adminUser, "u", "", "")

	fs.StringVar(&f.logPath, "log", "", "")
	fs.StringVar(&f.logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(usage, `Usage: dijaskidom [flags]

Flags:
  -c, -config <path>      YAML config file
  -d, -db <dsn>           SQLite path or postgres:// URL (default: dijaskidom.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -h, -help               show this help and exit

Environment variables prefixed with DIJASKIDOM_ (also read from .env)
override the config file; flags override both.
`)
	}
	return fs
}

func (f *flags) apply(cfg *Config, set map[string]bool) {
	if set["db"] || set["d"] {
		cfg.Database.DSN = f.dsn
	}
	if set["addr"] || set["a"] {
		cfg.HTTP.Addr = f.addr
	}
	if set["user"] || set["u"] {
		cfg.Admin.Username = f.adminUser
	}
	if set["log"] || set["l"] {
		cfg.Log.Path = f.logPath
	}
}
