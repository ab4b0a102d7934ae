// Command medbookctl drives the medbook API from a terminal: browsing
// doctors, booking and paying as a patient, and back-office chores.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"medbook/client"
	"medbook/validation"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

type app struct {
	api *client.Client
	out io.Writer
}

func defaultSessionDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "medbook")
	}
	return ".medbook"
}

func loadConfig(args []string) ([]string, error) {
	fs := pflag.NewFlagSet("medbookctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.String("base-url", client.DefaultBaseURL, "medbook server address")
	fs.String("session-dir", defaultSessionDir(), "where login sessions are stored")
	fs.Duration("timeout", 30*time.Second, "request timeout")
	fs.String("timezone", "Asia/Ho_Chi_Minh", "clinic time zone, same as the server's TIMEZONE")
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.GetViper()
	v.SetEnvPrefix("MEDBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigName("medbookctl")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "medbook"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return fs.Args(), nil
}

// zoneOption turns the timezone setting into a client option.
func zoneOption(name string) (client.Option, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", name, err)
	}
	return client.WithLocation(loc), nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: medbookctl [--base-url URL] [--session-dir DIR] [--timezone TZ] <command> [flags]")
	fmt.Fprintln(os.Stderr, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-20s %s\n", name, commands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "\nEvery flag can also be set as MEDBOOK_<FLAG> in the environment.")
}

func (a *app) print(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

func report(err error) {
	var fe validation.FieldErrors
	var apiErr *client.APIError
	switch {
	case errors.As(err, &fe):
		fmt.Fprintln(os.Stderr, "Please fix the following:")
		for _, field := range fe.Fields() {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, fe[field])
		}
	case errors.As(err, &apiErr):
		fmt.Fprintln(os.Stderr, apiErr.Message)
		for field, msg := range apiErr.Fields {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", field, msg)
		}
	default:
		fmt.Fprintln(os.Stderr, err)
	}
}

func main() {
	rest, err := loadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(rest) == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", rest[0])
		usage()
		os.Exit(2)
	}

	store, err := client.NewFileStore(viper.GetString("session-dir"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zone, err := zoneOption(viper.GetString("timezone"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	a := &app{api: client.New(viper.GetString("base-url"), store, zone), out: os.Stdout}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("timeout"))
	defer cancel()

	if err := cmd.run(ctx, a, rest[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		report(err)
		os.Exit(1)
	}
}
