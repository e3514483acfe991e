package lzss

// compressForTest writes data in the container format with a greedy matcher.
// It exists only so the decoder can be checked against arbitrary inputs.
func compressForTest(data []byte) []byte {
	out := Header{ID: ID, ActualSize: uint32(len(data))}.Bytes()
	flagPos, bit := -1, FlagBits

	emit := func(match bool, token ...byte) {
		if bit == FlagBits {
			flagPos = len(out)
			out = append(out, 0)
			bit = 0
		}
		if match {
			out[flagPos] |= 1 << bit
		}
		bit++
		out = append(out, token...)
	}

	for i := 0; i < len(data); {
		bestLen, bestDist := 0, 0
		for dist := 1; dist <= MaxPosition+1 && dist <= i; dist++ {
			n := 0
			for n < MaxMatch && i+n < len(data) && data[i+n-dist] == data[i+n] {
				n++
			}
			if n > bestLen {
				bestLen, bestDist = n, dist
			}
			if bestLen == MaxMatch {
				break
			}
		}
		if bestLen >= 2 {
			position := bestDist - 1
			emit(true, byte(position>>LookShift), byte(position&0x0F)<<LookShift|byte(bestLen-1))
			i += bestLen
			continue
		}
		emit(false, data[i])
		i++
	}
	emit(true, 0, 0)
	return out
}
