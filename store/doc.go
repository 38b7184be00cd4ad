// Package store persists liblinear models under unique handles.
//
// Every backend stores the same envelope produced by Codec:
//
//	offset  size  field
//	0       4     magic "LSVM"
//	4       1     envelope version (1)
//	5       1     compression (0 none, 1 zstd, 2 lz4)
//	6       8     uncompressed payload length, big endian
//	14      8     xxhash64 of the uncompressed payload, big endian
//	22      -     payload
//
// The uncompressed payload is the LIBLINEAR text model written by
// liblinear.WriteModel, so an extracted payload loads in LIBLINEAR tools.
//
// Backends never overwrite: saving under an existing handle fails.
package store
