// Package internaldefs holds the shared counter definition table used by
// the otel and prometheus exporters. Keeping names and help text in one
// place means the two export surfaces cannot drift apart.
//
// # What this package must NOT do
//
//   - Read or mutate counter values. It describes metrics, exporters
//     observe them.
//   - Import anything beyond the core package.
package internaldefs
