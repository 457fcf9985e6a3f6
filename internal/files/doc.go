// Package files discovers the statement tables present in the data
// directory.
//
// The dashboard reads only the datasets named in configuration. Discovery
// lists what is actually on disk so that startup can report configured
// files that are missing and data files nobody has registered yet.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	found, err := discovery.FindDataFiles()
//	extra := files.Unregistered(found, []string{"financial_data.csv"})
package files
