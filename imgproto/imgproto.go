// Package imgproto encodes resolved images into terminal inline image
// escape sequences.
package imgproto

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"path"
	"strconv"

	"pkt.systems/mdtty/termcap"
)

// Image is a resolved image ready to be encoded for one terminal.
type Image struct {
	// Source is the absolute path or URL the image was loaded from.
	Source string
	// Data holds the fetched bytes in their original encoding.
	Data []byte
	// Format is the decoder name reported by image.Decode, e.g. "png".
	Format string
	// Pixels is the decoded image, possibly downscaled to the footprint.
	Pixels image.Image
	// Width and Height are the natural pixel dimensions.
	Width  int
	Height int
	// Columns and Rows are the terminal cell footprint.
	Columns int
	Rows    int
}

// EncodeError reports pixel data a protocol encoder cannot use.
type EncodeError struct {
	Protocol termcap.ImageProtocol
	Err      error
}

func (e *EncodeError) Error() string {
	return "encode " + e.Protocol.String() + ": " + e.Err.Error()
}

func (e *EncodeError) Unwrap() error { return e.Err }

var (
	errNoPixels    = errors.New("no pixel data")
	errNoFootprint = errors.New("empty cell footprint")
	errNoSource    = errors.New("image has no source location")
)

// KittyChunkSize is the largest base64 payload sent in one kitty escape.
const KittyChunkSize = 4096

// Encode returns the bytes that display img with the given protocol. The
// result is self-terminated and leaves no pending terminal reply. Passing
// ImageNone or an unknown protocol panics; callers must only offer a
// protocol the terminal has.
func Encode(img *Image, protocol termcap.ImageProtocol) ([]byte, error) {
	switch protocol {
	case termcap.ImageITerm2:
		return encodeITerm2(img)
	case termcap.ImageKitty:
		return encodeKitty(img)
	case termcap.ImageTerminology:
		return encodeTerminology(img)
	default:
		panic(fmt.Sprintf("imgproto: no encoder for protocol %s", protocol))
	}
}

func checkFootprint(img *Image, protocol termcap.ImageProtocol) error {
	if img == nil {
		return &EncodeError{Protocol: protocol, Err: errNoPixels}
	}
	if img.Columns < 1 || img.Rows < 1 {
		return &EncodeError{Protocol: protocol, Err: errNoFootprint}
	}
	return nil
}

func encodeITerm2(img *Image) ([]byte, error) {
	if err := checkFootprint(img, termcap.ImageITerm2); err != nil {
		return nil, err
	}
	payload := img.Data
	switch img.Format {
	case "png", "jpeg", "gif":
	default:
		payload = nil
	}
	if len(payload) == 0 {
		encoded, err := pngBytes(img.Pixels)
		if err != nil {
			return nil, &EncodeError{Protocol: termcap.ImageITerm2, Err: err}
		}
		payload = encoded
	}
	var b bytes.Buffer
	b.Grow(base64.StdEncoding.EncodedLen(len(payload)) + 128)
	b.WriteString("\x1b]1337;File=")
	if name := path.Base(img.Source); img.Source != "" && name != "." && name != "/" {
		b.WriteString("name=")
		b.WriteString(base64.StdEncoding.EncodeToString([]byte(name)))
		b.WriteByte(';')
	}
	b.WriteString("size=")
	b.WriteString(strconv.Itoa(len(payload)))
	b.WriteString(";width=")
	b.WriteString(strconv.Itoa(img.Columns))
	b.WriteString(";height=")
	b.WriteString(strconv.Itoa(img.Rows))
	b.WriteString(";preserveAspectRatio=1;inline=1:")
	enc := base64.NewEncoder(base64.StdEncoding, &b)
	_, _ = enc.Write(payload)
	_ = enc.Close()
	b.WriteByte('\a')
	return b.Bytes(), nil
}

func encodeKitty(img *Image) ([]byte, error) {
	if err := checkFootprint(img, termcap.ImageKitty); err != nil {
		return nil, err
	}
	var raw []byte
	if img.Pixels != nil {
		encoded, err := pngBytes(img.Pixels)
		if err != nil {
			return nil, &EncodeError{Protocol: termcap.ImageKitty, Err: err}
		}
		raw = encoded
	} else if img.Format == "png" && len(img.Data) > 0 {
		raw = img.Data
	} else {
		return nil, &EncodeError{Protocol: termcap.ImageKitty, Err: errNoPixels}
	}
	data := make([]byte, base64.StdEncoding.EncodedLen(len(raw)))
	base64.StdEncoding.Encode(data, raw)

	var b bytes.Buffer
	b.Grow(len(data) + (len(data)/KittyChunkSize+1)*16 + 64)
	first := true
	for len(data) > 0 {
		if first {
			b.WriteString("\x1b_Gf=100,a=T,q=2,c=")
			b.WriteString(strconv.Itoa(img.Columns))
			b.WriteString(",r=")
			b.WriteString(strconv.Itoa(img.Rows))
			b.WriteByte(',')
			first = false
		} else {
			b.WriteString("\x1b_G")
		}
		more, chunk := 0, data
		if len(data) > KittyChunkSize {
			more, chunk = 1, data[:KittyChunkSize]
		}
		b.WriteString("m=")
		b.WriteString(strconv.Itoa(more))
		b.WriteByte(';')
		b.Write(chunk)
		b.WriteString("\x1b\\")
		data = data[len(chunk):]
	}
	return b.Bytes(), nil
}

// encodeTerminology emits the placement escape followed by one placeholder
// row per cell row. Terminology loads the file itself, so only the source
// location travels in the escape.
func encodeTerminology(img *Image) ([]byte, error) {
	if err := checkFootprint(img, termcap.ImageTerminology); err != nil {
		return nil, err
	}
	if img.Source == "" {
		return nil, &EncodeError{Protocol: termcap.ImageTerminology, Err: errNoSource}
	}
	var b bytes.Buffer
	b.WriteString("\x1b}ic#")
	b.WriteString(strconv.Itoa(img.Columns))
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(img.Rows))
	b.WriteByte(';')
	b.WriteString(img.Source)
	b.WriteByte(0)
	for row := 0; row < img.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("\x1b}ib")
		b.WriteByte(0)
		for col := 0; col < img.Columns; col++ {
			b.WriteByte('#')
		}
		b.WriteString("\x1b}ie")
		b.WriteByte(0)
	}
	return b.Bytes(), nil
}

func pngBytes(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errNoPixels
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errNoPixels
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
