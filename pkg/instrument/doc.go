// Package instrument reports suite activity to Prometheus and
// OpenTelemetry.
//
// Both are Observers; pass them to vtest.WithObserver, combined with
// Multi when more than one is wanted:
//
//	obs := instrument.Multi(
//	    instrument.NewMetrics(instrument.WithRegistry(reg)),
//	    instrument.NewTracer(instrument.WithTracerName("checkout-tests")),
//	)
//	vtest.Describe(t, Checkout, define, vtest.WithObserver(obs))
package instrument
