// SPDX-License-Identifier: MIT

// Package encode turns one schema field descriptor into a fixed-length
// numeric feature vector of dimension FeatureDim.
//
// The encoder is a pure function: identical input always yields an
// identical vector, across repeated calls and across process restarts.
// There is no learned embedding table and no process-local randomness;
// lexical character n-grams are folded into fixed buckets with FNV-1a,
// whose output is stable for a given byte sequence on every platform.
//
// Unseen raw datatypes never fail: they fall into a dedicated "unknown"
// bucket of the datatype one-hot block. Encoding-level anomalies are
// absorbed locally and never abort a run.
package encode
