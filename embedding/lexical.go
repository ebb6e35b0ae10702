package embedding

import (
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/resilience-labs/climatechat/schema"
)

// dimensionality of the hashed lexical space; matches the sparse field
// capacity provisioned in the index.
const lexicalDim = 1 << 20

// LexicalWeights builds a hashed term-frequency sparse vector for text.
// Terms are lowercased, split on non-letters/digits, and weighted with
// a sublinear tf (1 + log tf), L2-normalized.
func LexicalWeights(text string) schema.SparseVector {
	counts := map[uint32]float32{}
	for _, term := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(term))
		counts[h.Sum32()%lexicalDim]++
	}
	if len(counts) == 0 {
		return schema.SparseVector{}
	}

	indices := make([]uint32, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	var norm float64
	for i, idx := range indices {
		w := 1 + float32(math.Log(float64(counts[idx])))
		values[i] = w
		norm += float64(w) * float64(w)
	}
	norm = math.Sqrt(norm)
	for i := range values {
		values[i] = float32(float64(values[i]) / norm)
	}
	return schema.SparseVector{Indices: indices, Values: values}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
