// Package report summarises decode runs. A Collector takes one observation
// per decoded packet and produces record-count distribution statistics and an
// event-rate series, which the HTML and PNG renderers turn into charts.
package report

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/eventcam/internal/event"
)

// PacketSource yields decoded packets until a nil packet signals exhaustion.
type PacketSource interface {
	Next() (*event.Packet, error)
}

// Collector accumulates per-packet observations from one decode run.
type Collector struct {
	samples []sample
}

type sample struct {
	streamID uint32
	records  float64
	firstT   uint64
	lastT    uint64
	hasT     bool
}

func NewCollector() *Collector {
	return &Collector{}
}

// Observe records one decoded packet.
func (c *Collector) Observe(p *event.Packet) {
	s := sample{streamID: p.StreamID, records: float64(p.Body.RecordCount())}
	s.firstT, s.lastT, s.hasT = event.TimeRange(p.Body)
	c.samples = append(c.samples, s)
}

// Collect drains src into a fresh Collector.
func Collect(src PacketSource) (*Collector, error) {
	c := NewCollector()
	for {
		p, err := src.Next()
		if err != nil {
			return nil, err
		}
		if p == nil {
			return c, nil
		}
		c.Observe(p)
	}
}

// Summary describes the record-count distribution across all observed packets
// and the timestamp span of the recording, in the recording's native units.
type Summary struct {
	Packets       int
	Records       int64
	MeanRecords   float64
	StdDevRecords float64
	MedianRecords float64
	FirstT        uint64
	LastT         uint64
	PerStream     map[uint32]int64
}

func (c *Collector) Summary() Summary {
	s := Summary{Packets: len(c.samples), PerStream: make(map[uint32]int64)}
	if len(c.samples) == 0 {
		return s
	}

	counts := make([]float64, 0, len(c.samples))
	seenT := false
	for _, obs := range c.samples {
		counts = append(counts, obs.records)
		s.Records += int64(obs.records)
		s.PerStream[obs.streamID] += int64(obs.records)
		if !obs.hasT {
			continue
		}
		if !seenT || obs.firstT < s.FirstT {
			s.FirstT = obs.firstT
		}
		if !seenT || obs.lastT > s.LastT {
			s.LastT = obs.lastT
		}
		seenT = true
	}

	s.MeanRecords = stat.Mean(counts, nil)
	s.StdDevRecords = stat.StdDev(counts, nil)
	sort.Float64s(counts)
	s.MedianRecords = stat.Quantile(0.5, stat.Empirical, counts, nil)
	return s
}

// RateBin is the record count falling into one timestamp bucket.
type RateBin struct {
	StartT  uint64
	Records int64
}

// RateSeries buckets records by packet start timestamp. binWidth is in the
// recording's native timestamp units; packets without timestamps are skipped.
// Bins are sparse: buckets that received no packets are omitted.
func (c *Collector) RateSeries(binWidth uint64) []RateBin {
	if binWidth == 0 {
		binWidth = 1
	}
	byStart := make(map[uint64]int64)
	for _, obs := range c.samples {
		if !obs.hasT {
			continue
		}
		start := obs.firstT / binWidth * binWidth
		byStart[start] += int64(obs.records)
	}

	bins := make([]RateBin, 0, len(byStart))
	for start, records := range byStart {
		bins = append(bins, RateBin{StartT: start, Records: records})
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].StartT < bins[j].StartT })
	return bins
}
