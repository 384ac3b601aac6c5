package uat

// setBits writes value into the inclusive bit range msb..lsb of buf, where
// bit len(buf)*8-1 is the most significant bit of buf[0].
func setBits(buf []byte, msb, lsb int, value uint64) {
	top := len(buf)*8 - 1
	for i := lsb; i <= msb; i++ {
		byteIdx := (top - i) / 8
		shift := uint(i % 8)
		if (value>>uint(i-lsb))&1 == 1 {
			buf[byteIdx] |= 1 << shift
		} else {
			buf[byteIdx] &^= 1 << shift
		}
	}
}

// field is one bit range assignment used to build test payloads.
type field struct {
	msb, lsb int
	value    uint64
}

// build128 returns a 16-byte buffer with the given fields set.
func build128(fields ...field) []byte {
	buf := make([]byte, 16)
	for _, f := range fields {
		setBits(buf, f.msb, f.lsb, f.value)
	}
	return buf
}

// build64 returns an 8-byte buffer with the given fields set.
func build64(fields ...field) []byte {
	buf := make([]byte, 8)
	for _, f := range fields {
		setBits(buf, f.msb, f.lsb, f.value)
	}
	return buf
}

// downlink assembles a payload of size n with the header and the given
// spans copied in from src buffers.
func downlink(n int, header Header, parts map[Span][]byte) []byte {
	data := make([]byte, n)
	data[0] = byte(header >> 24)
	data[1] = byte(header >> 16)
	data[2] = byte(header >> 8)
	data[3] = byte(header)
	for span, src := range parts {
		copy(data[span.Offset:span.End()], src[:span.Length])
	}
	return data
}
