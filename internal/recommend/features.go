// Bookrec - Content-Based Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package recommend

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FeatureIndex holds one whitened embedding row per catalog book. Row i
// always describes catalog index i. The index is read-only after
// BuildFeatureIndex returns.
type FeatureIndex struct {
	vocab   [len(Attributes)][]string
	columns [len(Attributes)]map[string]int
	matrix  *mat.Dense
	norms   []float64
}

// BuildFeatureIndex one-hot encodes the four attributes of every book over
// the catalog's closed vocabulary and applies ZCA whitening.
func BuildFeatureIndex(c *Catalog, epsilon float64) (*FeatureIndex, error) {
	if c == nil || c.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	if c.Len() < 2 {
		return nil, ErrCatalogTooSmall
	}

	fi := &FeatureIndex{}
	offset := 0
	for _, a := range Attributes {
		vocab := c.Vocabulary(a)
		fi.vocab[a] = vocab
		cols := make(map[string]int, len(vocab))
		for j, v := range vocab {
			cols[v] = offset + j
		}
		fi.columns[a] = cols
		offset += len(vocab)
	}

	encoded := fi.oneHot(c, offset)
	whitened, err := zcaWhiten(encoded, epsilon)
	if err != nil {
		return nil, err
	}

	fi.setMatrix(whitened)
	return fi, nil
}

func (fi *FeatureIndex) setMatrix(m *mat.Dense) {
	rows, _ := m.Dims()
	fi.matrix = m
	fi.norms = make([]float64, rows)
	for i := 0; i < rows; i++ {
		fi.norms[i] = floats.Norm(m.RawRowView(i), 2)
	}
}

func (fi *FeatureIndex) oneHot(c *Catalog, dims int) *mat.Dense {
	x := mat.NewDense(c.Len(), dims, nil)
	for i, b := range c.books {
		for _, a := range Attributes {
			x.Set(i, fi.columns[a][b.Value(a)], 1)
		}
	}
	return x
}

// zcaWhiten centers x on its column means and applies W = U diag(1/sqrt(S+eps)) Uᵀ
// where U S Uᵀ is the SVD of the sample covariance. The output is x_c Wᵀ.
func zcaWhiten(x *mat.Dense, epsilon float64) (*mat.Dense, error) {
	rows, cols := x.Dims()
	if rows < 2 {
		return nil, ErrCatalogTooSmall
	}

	means := make([]float64, cols)
	for j := 0; j < cols; j++ {
		means[j] = stat.Mean(mat.Col(nil, j, x), nil)
	}
	centered := mat.NewDense(rows, cols, nil)
	centered.Apply(func(_, j int, v float64) float64 {
		return v - means[j]
	}, x)

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, centered, nil)

	var svd mat.SVD
	if ok := svd.Factorize(&cov, mat.SVDFull); !ok {
		return nil, errors.New("whitening: covariance SVD did not converge")
	}
	var u mat.Dense
	svd.UTo(&u)
	values := svd.Values(nil)

	inv := make([]float64, len(values))
	for k, s := range values {
		inv[k] = 1 / math.Sqrt(s+epsilon)
	}

	var scaled mat.Dense
	scaled.Mul(&u, mat.NewDiagDense(len(inv), inv))
	var w mat.Dense
	w.Mul(&scaled, u.T())

	out := mat.NewDense(rows, cols, nil)
	out.Mul(centered, w.T())
	return out, nil
}

// Rows returns the number of embedded books.
func (fi *FeatureIndex) Rows() int {
	r, _ := fi.matrix.Dims()
	return r
}

// Dims returns the embedding dimension, equal to the vocabulary size.
func (fi *FeatureIndex) Dims() int {
	_, c := fi.matrix.Dims()
	return c
}

// Vocabulary returns the encoded values of attribute a in column order.
func (fi *FeatureIndex) Vocabulary(a Attribute) []string {
	out := make([]string, len(fi.vocab[a]))
	copy(out, fi.vocab[a])
	return out
}

// Row returns a copy of the embedding for catalog index i.
func (fi *FeatureIndex) Row(i int) []float64 {
	return mat.Row(nil, i, fi.matrix)
}

// WeightedMean returns the weighted average of the rows at indices.
// Duplicated indices contribute once per occurrence.
func (fi *FeatureIndex) WeightedMean(indices []int, weights []float64) ([]float64, error) {
	if len(indices) != len(weights) {
		return nil, fmt.Errorf("weighted mean: %d indices but %d weights", len(indices), len(weights))
	}
	total := floats.Sum(weights)
	if len(indices) == 0 || total == 0 {
		return nil, ErrNoMatchableHistory
	}

	out := make([]float64, fi.Dims())
	for k, i := range indices {
		floats.AddScaled(out, weights[k], fi.matrix.RawRowView(i))
	}
	floats.Scale(1/total, out)
	return out, nil
}

// Similarities returns the cosine similarity between v and every row.
func (fi *FeatureIndex) Similarities(v []float64) []float64 {
	vn := floats.Norm(v, 2)
	out := make([]float64, len(fi.norms))
	for i := range out {
		if vn == 0 || fi.norms[i] == 0 {
			continue
		}
		out[i] = floats.Dot(v, fi.matrix.RawRowView(i)) / (vn * fi.norms[i])
	}
	return out
}
