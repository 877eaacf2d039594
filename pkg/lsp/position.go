package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// offsetAt converts an LSP position, counted in UTF-16 code units, to a byte
// offset into text. Positions past the end of a line clamp to the line end.
func offsetAt(text string, pos protocol.Position) int {
	line := protocol.UInteger(0)
	offset := 0

	for line < pos.Line {
		idx := indexByteFrom(text, offset, '\n')
		if idx < 0 {
			return len(text)
		}

		offset = idx + 1
		line++
	}

	units := protocol.UInteger(0)

	for offset < len(text) && units < pos.Character {
		r, size := utf8.DecodeRuneInString(text[offset:])
		if r == '\n' {
			break
		}

		units += protocol.UInteger(utf16.RuneLen(r))
		offset += size
	}

	return offset
}

// positionAt converts a byte offset into text to an LSP position.
func positionAt(text string, offset int) protocol.Position {
	offset = min(max(offset, 0), len(text))

	var pos protocol.Position

	for idx := 0; idx < offset; {
		r, size := utf8.DecodeRuneInString(text[idx:])

		if r == '\n' {
			pos.Line++
			pos.Character = 0
		} else {
			pos.Character += protocol.UInteger(utf16.RuneLen(r))
		}

		idx += size
	}

	return pos
}

// nextRuneOffset returns the offset just past the rune at offset, or offset
// itself at the end of text.
func nextRuneOffset(text string, offset int) int {
	if offset < 0 || offset >= len(text) {
		return max(min(offset, len(text)), 0)
	}

	_, size := utf8.DecodeRuneInString(text[offset:])

	return offset + size
}

func indexByteFrom(text string, from int, ch byte) int {
	for idx := from; idx < len(text); idx++ {
		if text[idx] == ch {
			return idx
		}
	}

	return -1
}
