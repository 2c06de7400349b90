// Package xmlstream converts an XML byte stream into a flat sequence of
// structural events pushed into a handler. It never buffers the document:
// the decoder is pulled token by token, so multi-gigabyte exports stream
// in constant memory.
package xmlstream

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// Kind is the structural event type.
type Kind int

const (
	// StartElement carries the lowercased element name and its attributes.
	StartElement Kind = iota
	// CharData carries one chunk of text or CDATA content. A single
	// element may produce several CharData events before its EndElement.
	CharData
	// EndElement carries the lowercased element name.
	EndElement
)

// Event is one structural event from the tokenizer.
//
// Element names are lowercased so adapters match schema names
// case-insensitively; attribute values are passed through untouched.
type Event struct {
	Kind Kind
	Name string
	Attr map[string]string
	Text string
}

// Handler consumes events as they are decoded. Returning an error stops
// the stream.
type Handler interface {
	HandleEvent(ev Event) error
}

// Stream decodes r and pushes every element-open, text/CDATA, and
// element-close event into h, in document order. Documents with a charset
// declaration (the stdict exports ship as EUC-KR) are transcoded via the
// declared label.
func Stream(r io.Reader, h Handler) error {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("xml token at offset %d: %w", dec.InputOffset(), err)
		}

		var ev Event
		switch t := tok.(type) {
		case xml.StartElement:
			attr := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attr[strings.ToLower(a.Name.Local)] = a.Value
			}
			ev = Event{Kind: StartElement, Name: strings.ToLower(t.Name.Local), Attr: attr}
		case xml.CharData:
			ev = Event{Kind: CharData, Text: string(t)}
		case xml.EndElement:
			ev = Event{Kind: EndElement, Name: strings.ToLower(t.Name.Local)}
		default:
			// Comments, directives, and processing instructions carry no
			// entry data.
			continue
		}

		if err := h.HandleEvent(ev); err != nil {
			return err
		}
	}
}
