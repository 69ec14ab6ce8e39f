// Package hclt learns and runs Hidden Chow-Liu Tree probabilistic circuits:
// tractable density models over discrete or continuous tabular data whose
// structure follows a maximum mutual-information spanning tree.
//
// 🚀 What is in the box?
//
//	• Mutual information: soft-binned pairwise MI, computed in chunks
//	• Trees: Prim/Kruskal spanning trees, Chow-Liu skeletons rooted at the centre
//	• Region graphs: input/product/sum regions with latent mixtures per tree edge
//	• Circuits: layered compilation, exact likelihoods, marginals, soft evidence
//	• Learning: flow-based mini-batch and full-batch EM
//	• Sampling: conditional draws from p(missing | observed)
//	• Persistence and serving: gzip/gob artifacts and a gin HTTP API
//
// The subpackages are layered bottom-up:
//
//	matrix/       — dense row-major matrices, validators, per-column statistics
//	mutualinfo/   — pairwise mutual information between variable sets
//	bfs/, dfs/    — traversals over index-addressed adjacency lists
//	prim_kruskal/ — minimum spanning trees over dense weight matrices
//	chowliu/      — Chow-Liu tree construction and centre rooting
//	family/       — input distributions (categorical, Gaussian) and their registry
//	region/       — region graphs and the HCLT template
//	circuit/      — compiled circuits: forward, backward, EM, sampling, persistence
//	hclt/         — the end-to-end structure learner
//	server/       — HTTP queries against a trained circuit
//	cmd/hclt      — training, evaluation, sampling and serving binary
//
// Quick example:
//
//	x, _ := matrix.NewDenseRows(rows)            // B×K integer data
//	c, _ := hclt.HCLT(x, hclt.WithNumLatents(16))
//	for step := 0; step < 100; step++ {
//		_, _ = c.Backward(x, 0)
//		_ = c.MiniBatchEM(0.1, 0.1)
//	}
//	ll, _ := c.MeanLogLikelihood(x)
//
//	go get github.com/katalvlaran/hclt
package hclt
