package fs

import (
	"bytes"
	"errors"
	"io"
	"path"
	"strings"

	billy "github.com/go-git/go-billy/v5"
)

const (
	sniffSize                    = 4096
	nonPrintableThresholdPercent = 30
)

var binaryExtensions = map[string]struct{}{
	".7z": {}, ".a": {}, ".bin": {}, ".bmp": {}, ".bz2": {}, ".class": {},
	".dll": {}, ".docx": {}, ".dylib": {}, ".exe": {}, ".gif": {}, ".gz": {},
	".ico": {}, ".jar": {}, ".jpeg": {}, ".jpg": {}, ".mp3": {}, ".mp4": {},
	".o": {}, ".otf": {}, ".pdf": {}, ".png": {}, ".pyc": {}, ".so": {},
	".tar": {}, ".tgz": {}, ".ttf": {}, ".wasm": {}, ".webp": {}, ".woff": {},
	".woff2": {}, ".xlsx": {}, ".xz": {}, ".zip": {},
}

var textBOMs = [][]byte{
	{0xEF, 0xBB, 0xBF}, // UTF-8
	{0xFF, 0xFE},       // UTF-16LE
	{0xFE, 0xFF},       // UTF-16BE
}

// LooksBinary reports whether the file at p is unlikely to be editable text.
// Well-known binary extensions are decided without reading; otherwise the
// first few KiB are sniffed.
func LooksBinary(fsys billy.Filesystem, p string) (bool, error) {
	if _, ok := binaryExtensions[strings.ToLower(path.Ext(p))]; ok {
		return true, nil
	}

	f, err := fsys.Open(p)
	if err != nil {
		return false, Classify(err)
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, sniffSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return false, Classify(err)
	}
	return !isTextSample(buf[:n]), nil
}

func isTextSample(sample []byte) bool {
	if len(sample) == 0 {
		return true
	}
	for _, bom := range textBOMs {
		if bytes.HasPrefix(sample, bom) {
			return true
		}
	}
	if bytes.IndexByte(sample, 0x00) != -1 {
		return false
	}
	nonPrintable := 0
	for _, b := range sample {
		if !isCommonTextByte(b) {
			nonPrintable++
		}
	}
	return nonPrintable*100/len(sample) < nonPrintableThresholdPercent
}

func isCommonTextByte(b byte) bool {
	switch {
	case b == '\t' || b == '\n' || b == '\r' || b == 0x1B:
		return true
	case b >= 0x20 && b <= 0x7E:
		return true
	default:
		return b >= 0x80
	}
}
