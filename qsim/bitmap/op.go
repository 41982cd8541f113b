package bitmap

// And returns the bitwise AND of two bitmaps. The result is as long as the
// shorter of the two.
func And(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	r := Dense{
		bits: make([]byte, 0, short.SizeBytes()),
		len:  short.len,
	}
	for i := range short.bits {
		r.bits = append(r.bits, short.bits[i]&long.bits[i])
	}
	return r
}

// XOr returns the bitwise XOR of two bitmaps. The shorter is implicitly padded
// with zeros.
func XOr(a, b Dense) Dense {
	short, long := a, b
	if b.len < a.len {
		short, long = b, a
	}
	r := Dense{
		bits: make([]byte, 0, long.SizeBytes()),
		len:  long.len,
	}
	for i := range short.bits {
		r.bits = append(r.bits, short.bits[i]^long.bits[i])
	}
	r.bits = append(r.bits, long.bits[len(short.bits):]...)
	return r
}

// XNor returns the bitwise equality of two bitmaps. The shorter is implicitly
// padded with zeros.
func XNor(a, b Dense) Dense {
	return Not(XOr(a, b))
}

// Not returns the bitwise negation of a bitmap.
func Not(d Dense) Dense {
	r := Dense{
		bits: make([]byte, 0, d.SizeBytes()),
		len:  d.len,
	}
	for _, b := range d.bits {
		r.bits = append(r.bits, ^b)
	}
	r.clearTail()
	return r
}

// Select selects a subset of bits from data, according to which bits are set in
// mask.
func Select(data, mask Dense) Dense {
	var d Dense
	for i := 0; i < data.Size(); i++ {
		if !mask.Get(i) {
			continue
		}
		d.AppendBit(data.Get(i))
	}
	return d
}

// Agreement returns the number of positions selected by mask at which a and b
// agree, along with the number of positions selected.
func Agreement(a, b, mask Dense) (agree, total int) {
	return CountOnes(And(XNor(a, b), mask)), CountOnes(mask)
}
