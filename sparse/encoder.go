// Package sparse は密な特徴ベクトルを liblinear の疎な行形式に変換します。
//
// 各行は 1 から始まる (index, value) の組を列順にすべて並べ、最後に
// index -1 の番兵を置いた長さ n+1 のスライスです。値が 0 や NaN でも
// 省略・検証はしません。
package sparse

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/linearsvm/core/parallel"
	"github.com/YuminosukeSato/linearsvm/liblinear"
)

// parallelThreshold 未満の行数ではエンコードを呼び出し元のゴルーチンで行う
const parallelThreshold = 256

// EncodeRow は1行を新しいバッファに変換する。
func EncodeRow(row []float64) []liblinear.FeatureNode {
	dst := make([]liblinear.FeatureNode, len(row)+1)
	EncodeRowInto(dst, row)
	return dst
}

// EncodeRowInto は dst[:len(row)+1] に1行を書き込む。
// dst の長さが len(row)+1 未満の場合は panic する。
func EncodeRowInto(dst []liblinear.FeatureNode, row []float64) {
	_ = dst[len(row)]
	for j, v := range row {
		dst[j] = liblinear.FeatureNode{Index: j + 1, Value: v}
	}
	dst[len(row)] = liblinear.FeatureNode{Index: liblinear.SentinelIndex}
}

// Buffer holds every encoded row of a matrix in one contiguous slice of
// (n+1)*l nodes. Rows are views into that slice.
type Buffer struct {
	l, n int
	flat []liblinear.FeatureNode
	rows [][]liblinear.FeatureNode
}

// EncodeMatrix encodes X row by row into a single flat buffer.
func EncodeMatrix(X mat.Matrix) *Buffer {
	l, n := X.Dims()
	stride := n + 1
	b := &Buffer{
		l:    l,
		n:    n,
		flat: make([]liblinear.FeatureNode, stride*l),
		rows: make([][]liblinear.FeatureNode, l),
	}

	parallel.ParallelizeWithThreshold(l, parallelThreshold, func(start, end int) {
		row := make([]float64, n)
		for i := start; i < end; i++ {
			view := b.flat[i*stride : (i+1)*stride : (i+1)*stride]
			mat.Row(row, i, X)
			EncodeRowInto(view, row)
			b.rows[i] = view
		}
	})
	return b
}

// Rows returns the l row views, or nil after Release.
func (b *Buffer) Rows() [][]liblinear.FeatureNode {
	return b.rows
}

// Flat returns the backing slice, or nil after Release.
func (b *Buffer) Flat() []liblinear.FeatureNode {
	return b.flat
}

// Dims returns the encoded matrix shape.
func (b *Buffer) Dims() (l, n int) {
	return b.l, b.n
}

// Release drops the backing storage. Calling it more than once is a no-op.
func (b *Buffer) Release() {
	b.flat = nil
	b.rows = nil
}
