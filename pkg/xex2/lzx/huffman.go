package lzx

// huffman is a canonical-Huffman decode table: for every possible
// maxbits-wide bit pattern, table holds the symbol it decodes to, so a
// lookup is a single slice index regardless of the symbol's actual code
// length.
type huffman struct {
	lens    []byte
	table   []uint16
	maxbits byte
}

// buildTable builds a canonical-Huffman decoding table from a slice of
// code lengths, one per symbol. A code length of 0 means the symbol is
// unused. Returns nil if the lengths don't form a complete prefix code,
// with two exceptions: all-zero lengths yield an empty table (maxbits
// 0), and a single non-zero length yields a degenerate table (below).
func buildTable(codelens []byte) *huffman {
	var count [maxTreePathLen + 1]uint
	var max byte
	nonzero := 0
	for _, cl := range codelens {
		count[cl]++
		if cl > 0 {
			nonzero++
		}
		if max < cl {
			max = cl
		}
	}

	if max == 0 {
		return &huffman{}
	}

	var first [maxTreePathLen + 1]uint
	code := uint(0)
	for i := byte(1); i <= max; i++ {
		code <<= 1
		first[i] = code
		code += count[i]
	}

	// A table that does not exactly fill the code space is invalid
	// unless exactly one symbol carries a non-zero length: there is
	// then no remaining non-zero length left unplaced, and the lone
	// symbol is simply made decodable from any bit pattern of its
	// stated length.
	degenerate := code != 1<<max
	if degenerate && nonzero != 1 {
		return nil
	}

	table := make([]uint16, 1<<max)
	for i, cl := range codelens {
		if cl == 0 {
			continue
		}
		c := first[cl]
		extended := c << (max - cl)
		for j := uint(0); j < 1<<(max-cl); j++ {
			table[extended+j] = uint16(i)
		}
		first[cl]++
	}
	if degenerate {
		for i := range table {
			table[i] = table[0]
		}
	}

	return &huffman{lens: codelens, table: table, maxbits: max}
}
