package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/conversion/api/model"
	"github.com/a-bouts/conversion/conversion"
	"github.com/a-bouts/conversion/latlon"
	"github.com/a-bouts/conversion/xmpp"
)

// Notifier receives a message for every internal invariant violation.
// xmpp.Xmpp is the production implementation.
type Notifier interface {
	Send(message string) error
}

type Server struct {
	// first for 64-bit atomic alignment
	stats    stats
	router   *mux.Router
	notifier Notifier

	reportLock sync.Mutex
	reported   model.Stats
}

func InitServer(n Notifier) *Server {

	s := &Server{notifier: n}

	router := mux.NewRouter().StrictSlash(true)

	router.HandleFunc("/conversion/-/healthz", s.healthz).Methods(http.MethodGet)

	apiV1 := router.PathPrefix("/conversion/api/v1").Subrouter()
	apiV1.HandleFunc("/g2r/{lon1}/{lat1}/{lon2}/{lat2}", s.gisToRadarVars).Methods(http.MethodGet)
	apiV1.HandleFunc("/r2g/{distance}/{bearing}/{lon}/{lat}", s.radarToGisVars).Methods(http.MethodGet)
	apiV1.HandleFunc("/g2r", s.gisToRadar).Methods(http.MethodPost)
	apiV1.HandleFunc("/r2g", s.radarToGis).Methods(http.MethodPost)
	apiV1.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)

	s.router = router
	return s
}

// Handler wraps the router with an access log written to accessLog and
// recovery from handler panics.
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(log.StandardLogger()),
		handlers.PrintRecoveryStack(true))
	return recovery(handlers.CombinedLoggingHandler(accessLog, s.router))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	type health struct {
		Status string `json:"status"`
	}

	writeJSON(w, http.StatusOK, health{Status: "Ok"})
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.snapshot())
}

func (s *Server) gisToRadarVars(w http.ResponseWriter, req *http.Request) {
	values, err := parseVars(mux.Vars(req), "lon1", "lat1", "lon2", "lat2")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.Error{Error: err.Error()})
		return
	}

	s.doGisToRadar(w, req, model.GisToRadar{
		From: latlon.LatLon{Lon: values[0], Lat: values[1]},
		To:   latlon.LatLon{Lon: values[2], Lat: values[3]},
	})
}

func (s *Server) gisToRadar(w http.ResponseWriter, req *http.Request) {
	var g model.GisToRadar
	if err := json.NewDecoder(req.Body).Decode(&g); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Error{Error: fmt.Sprintf("decoding body: %s", err)})
		return
	}

	s.doGisToRadar(w, req, g)
}

func (s *Server) doGisToRadar(w http.ResponseWriter, req *http.Request, g model.GisToRadar) {
	requestLogger := newRequestLogger(req, "g2r")

	res, err := conversion.GisToRadar(g.From, g.To)
	if err != nil {
		s.fail(w, requestLogger, err)
		return
	}
	s.stats.success()

	requestLogger.Debugf("GIS (%f,%f) -> (%f,%f) : %.2f° %.1f m", g.From.Lon, g.From.Lat, g.To.Lon, g.To.Lat, res.Bearing, res.Distance)

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) radarToGisVars(w http.ResponseWriter, req *http.Request) {
	values, err := parseVars(mux.Vars(req), "distance", "bearing", "lon", "lat")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, model.Error{Error: err.Error()})
		return
	}

	s.doRadarToGis(w, req, model.RadarToGis{
		Distance: values[0],
		Bearing:  values[1],
		From:     latlon.LatLon{Lon: values[2], Lat: values[3]},
	})
}

func (s *Server) radarToGis(w http.ResponseWriter, req *http.Request) {
	var r model.RadarToGis
	if err := json.NewDecoder(req.Body).Decode(&r); err != nil {
		writeJSON(w, http.StatusBadRequest, model.Error{Error: fmt.Sprintf("decoding body: %s", err)})
		return
	}

	s.doRadarToGis(w, req, r)
}

func (s *Server) doRadarToGis(w http.ResponseWriter, req *http.Request, r model.RadarToGis) {
	requestLogger := newRequestLogger(req, "r2g")

	res, err := conversion.RadarToGis(r.From, r.Radar())
	if err != nil {
		s.fail(w, requestLogger, err)
		return
	}
	s.stats.success()

	requestLogger.Debugf("Radar (%f,%f) %.2f° %.1f m -> (%f,%f)", r.From.Lon, r.From.Lat, r.Bearing, r.Distance, res.Lon, res.Lat)

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) fail(w http.ResponseWriter, requestLogger *log.Entry, err error) {
	var inputErr *conversion.InputError
	switch {
	case errors.As(err, &inputErr):
		s.stats.invalidInput()
		requestLogger.WithField("field", inputErr.Field).Infof("Rejected: %s", err)
		writeJSON(w, http.StatusBadRequest, model.Error{Error: err.Error(), Field: inputErr.Field})
	case errors.Is(err, conversion.ErrInvariantViolation):
		s.stats.defect()
		requestLogger.Errorf("Defect: %s", err)
		s.notify(err)
		writeJSON(w, http.StatusInternalServerError, model.Error{Error: err.Error()})
	default:
		requestLogger.Error(err)
		writeJSON(w, http.StatusInternalServerError, model.Error{Error: err.Error()})
	}
}

func (s *Server) notify(err error) {
	if s.notifier == nil {
		return
	}
	NotifyDefect(s.notifier, err)
}

// NotifyDefect sends err through n. An unconfigured xmpp sink is expected
// and only logged at debug level.
func NotifyDefect(n Notifier, err error) {
	e := n.Send(fmt.Sprintf("conversion: %s", err))
	switch {
	case e == nil:
	case errors.Is(e, xmpp.ErrMissingConfig):
		log.Debugf("Defect not notified: %s", e)
	default:
		log.Warnf("Defect not notified: %s", e)
	}
}

func parseVars(vars map[string]string, names ...string) ([]float64, error) {
	values := make([]float64, len(names))
	for i, name := range names {
		v, err := strconv.ParseFloat(vars[name], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", name, vars[name])
		}
		values[i] = v
	}
	return values, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("Encoding response: %s", err)
	}
}

func newRequestLogger(req *http.Request, action string) *log.Entry {
	fields := log.Fields{
		"action": action,
	}
	if ip, err := getIp(req); err == nil {
		fields["IP"] = ip
	}
	return log.WithFields(fields)
}

var errNoValidIP = errors.New("no valid ip found")

func getIp(r *http.Request) (string, error) {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}

	// Get IP from the X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP := net.ParseIP(ip)
		if netIP != nil {
			return ip, nil
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "", err
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip, nil
	}
	return "", errNoValidIP
}
