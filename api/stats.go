package api

import (
	"sync/atomic"

	"github.com/jasonlvhit/gocron"
	log "github.com/sirupsen/logrus"

	"github.com/a-bouts/conversion/api/model"
)

type stats struct {
	conversions uint64
	invalid     uint64
	defects     uint64
}

func (s *stats) success() {
	atomic.AddUint64(&s.conversions, 1)
}

func (s *stats) invalidInput() {
	atomic.AddUint64(&s.invalid, 1)
}

func (s *stats) defect() {
	atomic.AddUint64(&s.defects, 1)
}

func (s *stats) snapshot() model.Stats {
	return model.Stats{
		Conversions: atomic.LoadUint64(&s.conversions),
		Invalid:     atomic.LoadUint64(&s.invalid),
		Defects:     atomic.LoadUint64(&s.defects),
	}
}

// ReportEvery logs the counters accumulated since the previous report every
// `minutes` minutes. Sending on the returned channel stops the reports.
// Nothing is scheduled when minutes is 0.
func (s *Server) ReportEvery(minutes uint64) chan bool {
	if minutes == 0 {
		return nil
	}

	sc := gocron.NewScheduler()
	if err := sc.Every(minutes).Minutes().Do(s.report); err != nil {
		log.Errorf("Scheduling stats report: %s", err)
		return nil
	}

	return sc.Start()
}

func (s *Server) report() model.Stats {
	s.reportLock.Lock()
	defer s.reportLock.Unlock()

	cur := s.stats.snapshot()
	delta := model.Stats{
		Conversions: cur.Conversions - s.reported.Conversions,
		Invalid:     cur.Invalid - s.reported.Invalid,
		Defects:     cur.Defects - s.reported.Defects,
	}
	s.reported = cur

	entry := log.WithFields(log.Fields{
		"action":      "stats",
		"conversions": delta.Conversions,
		"invalid":     delta.Invalid,
		"defects":     delta.Defects,
	})
	if delta.Defects > 0 {
		entry.Warn("Conversion stats")
	} else {
		entry.Info("Conversion stats")
	}

	return delta
}
