package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/conversion/api"
	"github.com/a-bouts/conversion/conversion"
	"github.com/a-bouts/conversion/latlon"
	"github.com/a-bouts/conversion/xmpp"
)

const usage = `The '%[1]s' program works in three modes:
-  %[1]s g2r lon1 lat1 lon2 lat2  (where lon and lat are in decimal degrees)
-  %[1]s r2g distance bearing lon1 lat1  (where lon, lat and bearing are in decimal degrees and distance is in meters)
-  %[1]s serve  (serves both conversions over HTTP)
Mode 'g2r' handles the conversion from GIS to Radar coordinates.
Mode 'r2g' handles the conversion from Radar to GIS coordinates.

Flags (also read from the upper-cased environment variable, e.g. LOG_LEVEL):
`

type config struct {
	logLevel      string
	logJSON       bool
	httpAddr      string
	statsInterval uint64
	cpuprofile    bool
	xmpp          xmpp.Config
}

func main() {
	os.Exit(run(os.Args[0], os.Args[1:], os.Stdout, os.Stderr))
}

func run(name string, args []string, stdout, stderr io.Writer) int {
	dotenvErr := godotenv.Load()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	var cfg config
	fs.StringVar(&cfg.logLevel, "log-level", "warning", "log level (debug, info, warning, error)")
	fs.BoolVar(&cfg.logJSON, "log-json", false, "log as JSON")
	fs.StringVar(&cfg.httpAddr, "http-addr", ":8080", "listen address of the serve mode")
	fs.Uint64Var(&cfg.statsInterval, "stats-interval", 15, "minutes between usage stats reports in serve mode, 0 disables them")
	fs.BoolVar(&cfg.cpuprofile, "cpuprofile", false, "write a CPU profile in the working directory while serving")
	fs.StringVar(&cfg.xmpp.Host, "xmpp-host", "", "xmpp server, defaults to the jid domain")
	fs.StringVar(&cfg.xmpp.Jid, "xmpp-jid", "", "xmpp account sending defect reports")
	fs.StringVar(&cfg.xmpp.Password, "xmpp-password", "", "")
	fs.StringVar(&cfg.xmpp.To, "xmpp-to", "", "xmpp recipient of defect reports")
	fs.BoolVar(&cfg.xmpp.InsecureSkipVerify, "xmpp-insecure", false, "skip xmpp server certificate verification")
	fs.Usage = func() {
		fmt.Fprintf(stdout, usage, name)
		fs.PrintDefaults()
	}

	if err := ff.Parse(fs, args, ff.WithEnvVarNoPrefix()); err != nil {
		return 1
	}

	if err := initLogger(stderr, cfg.logLevel, cfg.logJSON); err != nil {
		fmt.Fprintf(stdout, "ERROR: %s!\n", err)
		return 1
	}
	if dotenvErr != nil {
		log.Debug("No .env file found (using environment variables)")
	}

	notifier := xmpp.Xmpp{Config: cfg.xmpp}

	rest := fs.Args()
	if len(rest) > 0 && rest[0] == "serve" {
		if len(rest) != 1 {
			fmt.Fprintln(stdout, "ERROR: The serve mode takes no argument!")
			return 1
		}
		if err := serve(cfg, notifier); err != nil {
			log.Error(err)
			return 1
		}
		return 0
	}

	if len(rest) != 5 {
		fmt.Fprintln(stdout, "ERROR: You need five arguments!")
		return 1
	}

	switch rest[0] {
	case "r2g":
		fmt.Fprintln(stdout, "Converting from Radar to GIS coordinates.")
		v, err := parseArgs(rest[1:], "distance", "bearing", "lon1", "lat1")
		if err != nil {
			fmt.Fprintf(stdout, "ERROR: %s!\n", err)
			return 1
		}
		to, err := conversion.RadarToGis(latlon.LatLon{Lon: v[2], Lat: v[3]}, conversion.Radar{Distance: v[0], Bearing: v[1]})
		if err != nil {
			return reportFailure(stdout, notifier, err)
		}
		fmt.Fprintf(stdout, "The longitude and latitude of the end point are respectively: %f° and %f°.\n", to.Lon, to.Lat)
		return 0

	case "g2r":
		fmt.Fprintln(stdout, "Converting from GIS to Radar coordinates.")
		v, err := parseArgs(rest[1:], "lon1", "lat1", "lon2", "lat2")
		if err != nil {
			fmt.Fprintf(stdout, "ERROR: %s!\n", err)
			return 1
		}
		r, err := conversion.GisToRadar(latlon.LatLon{Lon: v[0], Lat: v[1]}, latlon.LatLon{Lon: v[2], Lat: v[3]})
		if err != nil {
			return reportFailure(stdout, notifier, err)
		}
		fmt.Fprintf(stdout, "The initial bearing and great-circle distance between the two points "+
			"are respectively: %f° and %fm.\n", r.Bearing, r.Distance)
		return 0

	default:
		fmt.Fprintln(stdout, "ERROR: Invalid conversion type!")
		return 1
	}
}

func parseArgs(args []string, names ...string) ([]float64, error) {
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("%s should be a decimal number, got %q", name, args[i])
		}
		values[i] = v
	}
	return values, nil
}

func reportFailure(stdout io.Writer, n api.Notifier, err error) int {
	fmt.Fprintf(stdout, "ERROR: %s!\n", err)
	if errors.Is(err, conversion.ErrInvariantViolation) {
		log.Errorf("Defect: %s", err)
		api.NotifyDefect(n, err)
	}
	return 1
}

func serve(cfg config, n api.Notifier) error {
	if cfg.cpuprofile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	s := api.InitServer(n)
	if stop := s.ReportEvery(cfg.statsInterval); stop != nil {
		defer func() { stop <- true }()
	}

	accessLog := log.StandardLogger().Writer()
	defer accessLog.Close()

	srv := &http.Server{
		Addr:              cfg.httpAddr,
		Handler:           s.Handler(accessLog),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Start server on %s", cfg.httpAddr)
		errc <- srv.ListenAndServe()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case err := <-errc:
		return fmt.Errorf("serving on %s: %w", cfg.httpAddr, err)
	case <-sig:
	}

	log.Info("Stop server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
