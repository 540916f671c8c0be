package regionbuf

const intbanksize = 1 << 9

// intbank maps label sequence numbers to ints. Storage is a list of fixed
// size slabs so growing never copies what is already stored.
type intbank struct {
	slabs [][]int
}

func (ib *intbank) save(sequence int32, value int) {
	sequence-- // externally sequence starts at 1
	slabNo := int(sequence / intbanksize)
	slabOffset := int(sequence % intbanksize)

	for len(ib.slabs) <= slabNo {
		ib.slabs = append(ib.slabs, make([]int, intbanksize))
	}

	ib.slabs[slabNo][slabOffset] = value
}

// lookup returns the value saved for sequence, or 0 if nothing was saved
func (ib *intbank) lookup(sequence int32) int {
	sequence-- // externally, sequence starts at 1
	slabNo := int(sequence / intbanksize)
	slabOffset := int(sequence % intbanksize)

	if sequence < 0 || slabNo >= len(ib.slabs) {
		return 0
	}
	return ib.slabs[slabNo][slabOffset]
}
