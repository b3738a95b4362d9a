package commands

import (
	"github.com/mobile-next/wintest/config"
	"github.com/mobile-next/wintest/desktop/desktoptest"
)

func newTestExecutor(f *desktoptest.Fake, mutate ...func(*config.Config)) *Executor {
	cfg := config.Default()
	cfg.Capture.OutputDir = ""
	for _, m := range mutate {
		m(&cfg)
	}

	e, err := NewExecutor(f.Desktop(), cfg, WithSleeper(f.Sleep))
	if err != nil {
		panic(err)
	}
	return e
}

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}
