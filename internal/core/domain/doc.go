// Package domain contains the core business entities for paperdex:
// papers, chunks, retrieval results and the error taxonomy shared by
// services and adapters. It has no dependencies on other internal
// packages.
package domain
