package cmd

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/log"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// startStatsView serves live runtime charts (heap, goroutines, GC) for the
// duration of a run. The returned func shuts the server down.
func startStatsView(addr string, l log.Logger) func() {
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go func() {
		if err := mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Warn("stats server failed", "addr", addr, "err", err)
		}
	}()
	l.Info("stats server available", "url", "http://"+addr+"/debug/statsview")
	return mgr.Stop
}
