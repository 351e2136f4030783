package object

import (
	"bytes"
	"fmt"
	"strconv"
)

// SplitHeader parses the "<type> <size>\0" envelope at the start of an
// inflated object. It returns the type tag, the declared size and the
// offset at which content begins.
func SplitHeader(buf []byte) (tag string, size int64, offset int, err error) {
	sp := bytes.IndexByte(buf, ' ')
	if sp < 0 {
		return "", 0, 0, fmt.Errorf("%w: no space in header", ErrInvalidFormat)
	}
	nul := bytes.IndexByte(buf[sp+1:], 0)
	if nul < 0 {
		return "", 0, 0, fmt.Errorf("%w: no NUL after type %q", ErrInvalidFormat, buf[:sp])
	}
	nul += sp + 1

	sizeStr := string(buf[sp+1 : nul])
	size, err = strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: invalid size %q", ErrInvalidFormat, sizeStr)
	}
	return string(buf[:sp]), size, nul + 1, nil
}
