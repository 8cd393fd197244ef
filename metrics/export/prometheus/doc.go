// Package prometheus renders core counters in the Prometheus text
// exposition format, either as a string or as an http.Handler ready to
// mount on a scrape endpoint.
package prometheus
