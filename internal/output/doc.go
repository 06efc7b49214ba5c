// Package output renders command results as aligned tables, JSON or YAML.
//
// Values implementing Tabular are rendered as tables with their own columns;
// multi-cluster results prefix a CLUSTER column and list failed clusters
// after the table. JSON and YAML output wrap each cluster result with its
// status, duration and error.
//
// Colors are enabled only for terminals and can be disabled with WithNoColor.
// Health values (green, yellow, red) in STATUS and HEALTH columns are colored
// to match.
package output
