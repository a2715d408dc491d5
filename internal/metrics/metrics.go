package metrics

import (
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	RowsRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csv_loader",
		Name:      "rows_read_total",
		Help:      "Total CSV data rows read.",
	})
	RowsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csv_loader",
		Name:      "rows_dropped_total",
		Help:      "Total rows dropped for holding a missing or infinite cell.",
	})
	RecordsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "csv_loader",
		Name:      "records_written_total",
		Help:      "Total records put into the table.",
	})
	Outcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "csv_loader",
		Name:      "ingest_outcomes_total",
		Help:      "Ingest runs by outcome kind.",
	}, []string{"kind"})
)

var once sync.Once

// Init registers collectors; safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(RowsRead, RowsDropped, RecordsWritten, Outcomes)
	})
}

// Serve starts a /metrics server on the given addr (e.g., ":9090"). Blocks; run in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}

// ServeBackground runs Serve in a goroutine and logs why it stopped.
func ServeBackground(addr string, log *zap.Logger) {
	go func() {
		if err := Serve(addr); err != nil {
			log.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
}

// AddrFromEnv returns listen address from METRICS_ADDR or default ":9090".
func AddrFromEnv() string {
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		return v
	}
	return ":9090"
}
