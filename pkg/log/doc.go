/*
Package log provides structured logging for the aggregator using zerolog.

It wraps zerolog to give every component a JSON-structured (or console,
for local development) logger with a configurable level, plus a few
helpers for attaching the context fields the aggregator cares about:
consumer name and sink name.

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	sinkLog := log.WithSink("http")
	sinkLog.Warn().Err(err).Msg("publish attempt failed, retrying")
*/
package log
