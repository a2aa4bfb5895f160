package compiler

import (
	"encoding/binary"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// StringLit is a decoded, possibly concatenated string literal.
type StringLit struct {
	Prefix Prefix
	Elem   *Type    // element type
	Units  []uint32 // code units, terminator excluded
	Data   []byte   // little-endian encoding, terminator included
}

// Len is the array length of the literal, terminator included.
func (s *StringLit) Len() int64 { return int64(len(s.Units)) + 1 }

// piece is one decoded element of a literal body. Raw pieces come from
// octal or hex escapes and denote a code unit; the rest are code points.
type piece struct {
	v   uint32
	raw bool
}

var simpleEscapes = map[rune]uint32{
	'n': '\n', 't': '\t', 'r': '\r', 'a': '\a', 'b': '\b', 'f': '\f', 'v': '\v',
	'\\': '\\', '\'': '\'', '"': '"', '?': '?', 'e': 0x1b,
}

// splitLiteral separates the prefix from a raw lexeme and strips the quotes.
func splitLiteral(raw string) (Prefix, string) {
	q := strings.IndexAny(raw, `"'`)
	prefix, _ := prefixOf(raw[:q])
	return prefix, raw[q+1 : len(raw)-1]
}

// decodeBody decodes the escapes of a literal body.
func decodeBody(body string, pos Pos) ([]piece, error) {
	var out []piece
	rs := []rune(body)
	for i := 0; i < len(rs); i++ {
		if rs[i] != '\\' {
			out = append(out, piece{v: uint32(rs[i])})
			continue
		}
		i++
		c := rs[i]
		if v, ok := simpleEscapes[c]; ok {
			out = append(out, piece{v: v})
			continue
		}
		switch {
		case c >= '0' && c <= '7':
			v := uint32(0)
			n := 0
			for ; n < 3 && i < len(rs) && rs[i] >= '0' && rs[i] <= '7'; n++ {
				v = v*8 + uint32(rs[i]-'0')
				i++
			}
			i--
			out = append(out, piece{v: v, raw: true})
		case c == 'x':
			j := i + 1
			for j < len(rs) && isHexDigit(rs[j]) {
				j++
			}
			if j == i+1 {
				return nil, lexErrorf(pos, `\x used with no following hex digits`)
			}
			v, err := strconv.ParseUint(string(rs[i+1:j]), 16, 32)
			if err != nil {
				return nil, lexErrorf(pos, "hex escape sequence out of range")
			}
			out = append(out, piece{v: uint32(v), raw: true})
			i = j - 1
		case c == 'u' || c == 'U':
			n := 4
			if c == 'U' {
				n = 8
			}
			if i+1+n > len(rs) {
				return nil, lexErrorf(pos, `incomplete universal character name \%c`, c)
			}
			digits := string(rs[i+1 : i+1+n])
			v, err := strconv.ParseUint(digits, 16, 32)
			if err != nil {
				return nil, lexErrorf(pos, `incomplete universal character name \%c%s`, c, digits)
			}
			if v > utf8.MaxRune || (v >= 0xD800 && v <= 0xDFFF) {
				return nil, lexErrorf(pos, "\\%c%s is not a valid universal character", c, digits)
			}
			out = append(out, piece{v: uint32(v)})
			i += n
		default:
			return nil, lexErrorf(pos, "unknown escape sequence '\\%c'", c)
		}
	}
	return out, nil
}

// unitLimit is the largest code unit an encoding can hold.
func unitLimit(p Prefix) uint64 {
	switch p {
	case PrefixUTF16:
		return 0xFFFF
	case PrefixUTF32, PrefixWide:
		return 0xFFFFFFFF
	}
	return 0xFF
}

// encode turns pieces into code units of the given encoding.
func encode(pieces []piece, p Prefix, pos Pos) ([]uint32, error) {
	var units []uint32
	for _, pc := range pieces {
		if pc.raw {
			if uint64(pc.v) > unitLimit(p) {
				return nil, lexErrorf(pos, "escape sequence out of range")
			}
			units = append(units, pc.v)
			continue
		}
		switch p {
		case PrefixNone, PrefixUTF8:
			var buf [utf8.UTFMax]byte
			n := utf8.EncodeRune(buf[:], rune(pc.v))
			for _, b := range buf[:n] {
				units = append(units, uint32(b))
			}
		case PrefixUTF16:
			if pc.v > 0xFFFF {
				r1, r2 := utf16.EncodeRune(rune(pc.v))
				units = append(units, uint32(r1), uint32(r2))
			} else {
				units = append(units, pc.v)
			}
		default:
			units = append(units, pc.v)
		}
	}
	return units, nil
}

// stringElem returns the element type for a string literal prefix. The
// char16_t/char32_t/wchar_t flavours come from the ABI typedef table.
func stringElem(p Prefix, abi *ABI) *Type {
	switch p {
	case PrefixUTF8:
		return abi.typedefOr("char8_t", TyUChar)
	case PrefixUTF16:
		return abi.typedefOr("char16_t", TyUShort)
	case PrefixUTF32:
		return abi.typedefOr("char32_t", TyUInt)
	case PrefixWide:
		return abi.typedefOr("wchar_t", TyInt)
	}
	return TyChar
}

// DecodeString decodes and concatenates adjacent string literal lexemes.
// The result takes the explicit prefix of its pieces; when two different
// explicit prefixes are mixed the last one wins.
func DecodeString(raws []string, r *Resolver, pos Pos) (*StringLit, error) {
	final := PrefixNone
	bodies := make([][]piece, len(raws))
	for i, raw := range raws {
		p, body := splitLiteral(raw)
		if p != PrefixNone {
			final = p
		}
		pcs, err := decodeBody(body, pos)
		if err != nil {
			return nil, err
		}
		bodies[i] = pcs
	}
	var all []piece
	for _, b := range bodies {
		all = append(all, b...)
	}
	units, err := encode(all, final, pos)
	if err != nil {
		return nil, err
	}
	elem := stringElem(final, r.abi)
	size := r.size(elem)
	data := make([]byte, 0, (len(units)+1)*int(size))
	for _, u := range append(units, 0) {
		switch size {
		case 1:
			data = append(data, byte(u))
		case 2:
			data = binary.LittleEndian.AppendUint16(data, uint16(u))
		default:
			data = binary.LittleEndian.AppendUint32(data, u)
			for range size - 4 {
				data = append(data, 0)
			}
		}
	}
	return &StringLit{Prefix: final, Elem: elem, Units: units, Data: data}, nil
}

// DecodeChar decodes a character constant and returns its value.
func DecodeChar(raw string, r *Resolver, pos Pos) (Value, error) {
	p, body := splitLiteral(raw)
	pcs, err := decodeBody(body, pos)
	if err != nil {
		return Value{}, err
	}
	units, err := encode(pcs, p, pos)
	if err != nil {
		return Value{}, err
	}
	switch p {
	case PrefixNone:
		if len(units) == 1 {
			// A plain char constant has type int but the value of a char.
			c := r.Const(uint64(units[0]), TyChar)
			return r.Convert(c, TyInt), nil
		}
		var v uint64
		for _, u := range units {
			v = v<<8 | uint64(u)
		}
		return r.Const(v, TyInt), nil
	case PrefixUTF8:
		if len(units) != 1 {
			return Value{}, lexErrorf(pos, "character too large for a u8 character constant")
		}
		return r.Const(uint64(units[0]), stringElem(p, r.abi)), nil
	}
	if len(units) != 1 {
		return Value{}, lexErrorf(pos, "character constant %s does not fit in one code unit", raw)
	}
	t := stringElem(p, r.abi)
	return r.Const(uint64(units[0]), t), nil
}

// IntLiteral parses an integer constant and gives it the first type from
// the C list that can represent it.
func IntLiteral(lexeme string, r *Resolver, pos Pos) (Value, error) {
	s := strings.ReplaceAll(lexeme, "'", "")
	end := len(s)
	for end > 0 && strings.ContainsRune("uUlL", rune(s[end-1])) {
		end--
	}
	digits, suffix := s[:end], strings.ToLower(s[end:])
	base := 10
	switch {
	case strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X"):
		base, digits = 16, digits[2:]
	case strings.HasPrefix(digits, "0b") || strings.HasPrefix(digits, "0B"):
		base, digits = 2, digits[2:]
	case len(digits) > 1 && digits[0] == '0':
		base, digits = 8, digits[1:]
	}
	x, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return Value{}, lexErrorf(pos, "integer constant %s is too large", lexeme)
		}
		return Value{}, lexErrorf(pos, "invalid integer constant %s", lexeme)
	}

	unsigned := strings.Contains(suffix, "u")
	longs := strings.Count(suffix, "l")
	var cands []*Type
	switch {
	case longs == 0 && !unsigned:
		cands = []*Type{TyInt, TyUInt, TyLong, TyULong, TyLongLong, TyULongLong}
	case longs == 0:
		cands = []*Type{TyUInt, TyULong, TyULongLong}
	case longs == 1 && !unsigned:
		cands = []*Type{TyLong, TyULong, TyLongLong, TyULongLong}
	case longs == 1:
		cands = []*Type{TyULong, TyULongLong}
	case !unsigned:
		cands = []*Type{TyLongLong, TyULongLong}
	default:
		cands = []*Type{TyULongLong}
	}
	for _, t := range cands {
		// Decimal constants without a u suffix only take signed types.
		if base == 10 && !unsigned && !r.IsSigned(t) {
			continue
		}
		v := Value{Bits: x, T: TyULongLong}
		if r.Fits(v, t) {
			return r.Convert(v, t), nil
		}
	}
	// Too large for any signed type: gcc gives it an unsigned type.
	return r.Const(x, TyULongLong), nil
}

// FloatLiteral parses a floating constant.
func FloatLiteral(lexeme string, pos Pos) (float64, *Type, error) {
	s := strings.ReplaceAll(lexeme, "'", "")
	t := TyDouble
	switch s[len(s)-1] {
	case 'f', 'F':
		t, s = TyFloat, s[:len(s)-1]
	case 'l', 'L':
		t, s = TyLongDouble, s[:len(s)-1]
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, t, nil
		}
		return 0, nil, lexErrorf(pos, "invalid floating constant %s", lexeme)
	}
	return f, t, nil
}
