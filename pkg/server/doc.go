// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package server exposes one model directory over HTTP.

	GET  /api/v2/model               load the combined {inputModel, fileInfo} document
	POST /api/v2/model?dryRun=true   plan (and unless dry run, apply) an edited model
	GET  /health
	GET  /metrics                    Prometheus metrics

Load and write sequences against the same directory are serialized.
*/
package server
