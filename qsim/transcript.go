package qsim

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/alan-christopher/qsim/qsim/photon"
	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// A transcript is a sequence of frames: record-length | record. Lengths are
// little-endian int32s and records are protocol buffer wire-format messages
// holding exactly one of a header (field 1) or a symbol (field 2).
const (
	recordHeader protowire.Number = 1
	recordSymbol protowire.Number = 2

	// MaxRecordSize bounds the length of a single transcript record.
	MaxRecordSize = 1 << 16
)

// Header field numbers.
const (
	headerRunID   protowire.Number = 1
	headerKind    protowire.Number = 2
	headerSymbols protowire.Number = 3
)

// Symbol field numbers.
const (
	symIndex         protowire.Number = 1
	symBit           protowire.Number = 2
	symSenderBasis   protowire.Number = 3
	symEmitted       protowire.Number = 4
	symArrived       protowire.Number = 5
	symEveOutcome    protowire.Number = 6
	symEveBasis      protowire.Number = 7
	symRegenerated   protowire.Number = 8
	symForwarded     protowire.Number = 9
	symRecvOutcome   protowire.Number = 10
	symReceiverBasis protowire.Number = 11
)

// A Header opens a transcript.
type Header struct {
	RunID   uuid.UUID
	Kind    Kind
	Symbols int
}

// A Record is one decoded transcript record. Exactly one field is non-nil.
type Record struct {
	Header *Header
	Symbol *Symbol
}

// A TranscriptWriter writes framed transcript records.
type TranscriptWriter struct {
	w io.Writer
}

// NewTranscriptWriter returns a TranscriptWriter writing to w.
func NewTranscriptWriter(w io.Writer) *TranscriptWriter {
	return &TranscriptWriter{w: w}
}

// WriteHeader writes h as the next record.
func (t *TranscriptWriter) WriteHeader(h Header) error {
	var b []byte
	b = protowire.AppendTag(b, headerRunID, protowire.BytesType)
	b = protowire.AppendBytes(b, h.RunID[:])
	b = appendVarint(b, headerKind, uint64(h.Kind))
	b = appendVarint(b, headerSymbols, uint64(h.Symbols))
	return t.write(recordHeader, b)
}

// WriteSymbol writes s as the next record.
func (t *TranscriptWriter) WriteSymbol(s Symbol) error {
	var b []byte
	b = appendVarint(b, symIndex, uint64(s.Index))
	b = appendVarint(b, symBit, protowire.EncodeBool(s.Bit))
	b = appendVarint(b, symSenderBasis, uint64(s.SenderBasis))
	b = appendVarint(b, symEmitted, uint64(s.Emitted))
	b = appendVarint(b, symArrived, uint64(s.Arrived))
	b = appendVarint(b, symEveOutcome, protowire.EncodeZigZag(int64(s.Eve.Outcome)))
	b = appendVarint(b, symEveBasis, uint64(s.Eve.Basis))
	b = appendVarint(b, symRegenerated, protowire.EncodeBool(s.Regenerated))
	b = appendVarint(b, symForwarded, protowire.EncodeBool(s.Forwarded))
	b = appendVarint(b, symRecvOutcome, protowire.EncodeZigZag(int64(s.Received.Outcome)))
	b = appendVarint(b, symReceiverBasis, uint64(s.Received.Basis))
	return t.write(recordSymbol, b)
}

func (t *TranscriptWriter) write(kind protowire.Number, msg []byte) error {
	var rec []byte
	rec = protowire.AppendTag(rec, kind, protowire.BytesType)
	rec = protowire.AppendBytes(rec, msg)
	if err := binary.Write(t.w, binary.LittleEndian, int32(len(rec))); err != nil {
		return err
	}
	if _, err := t.w.Write(rec); err != nil {
		return err
	}
	return nil
}

// A TranscriptReader reads records written by a TranscriptWriter.
type TranscriptReader struct {
	r io.Reader
}

// NewTranscriptReader returns a TranscriptReader reading from r.
func NewTranscriptReader(r io.Reader) *TranscriptReader {
	return &TranscriptReader{r: r}
}

// Next returns the next record, or io.EOF once the transcript is exhausted.
func (t *TranscriptReader) Next() (Record, error) {
	var rLen int32
	if err := binary.Read(t.r, binary.LittleEndian, &rLen); err != nil {
		return Record{}, err
	}
	if rLen < 0 || rLen > MaxRecordSize {
		return Record{}, fmt.Errorf("invalid record length %d", rLen)
	}
	rec := make([]byte, rLen)
	if _, err := io.ReadFull(t.r, rec); err != nil {
		return Record{}, err
	}

	num, typ, n := protowire.ConsumeTag(rec)
	if n < 0 {
		return Record{}, protowire.ParseError(n)
	}
	if typ != protowire.BytesType {
		return Record{}, fmt.Errorf("record field %d has wire type %d", num, typ)
	}
	msg, m := protowire.ConsumeBytes(rec[n:])
	if m < 0 {
		return Record{}, protowire.ParseError(m)
	}
	switch num {
	case recordHeader:
		h, err := parseHeader(msg)
		if err != nil {
			return Record{}, fmt.Errorf("parsing header: %w", err)
		}
		return Record{Header: &h}, nil
	case recordSymbol:
		s, err := parseSymbol(msg)
		if err != nil {
			return Record{}, fmt.Errorf("parsing symbol: %w", err)
		}
		return Record{Symbol: &s}, nil
	}
	return Record{}, fmt.Errorf("unknown record type %d", num)
}

func parseHeader(b []byte) (Header, error) {
	var h Header
	err := consumeFields(b, func(num protowire.Number, v uint64, raw []byte) error {
		switch num {
		case headerRunID:
			id, err := uuid.FromBytes(raw)
			if err != nil {
				return err
			}
			h.RunID = id
		case headerKind:
			h.Kind = Kind(v)
		case headerSymbols:
			h.Symbols = int(v)
		}
		return nil
	})
	return h, err
}

func parseSymbol(b []byte) (Symbol, error) {
	var s Symbol
	err := consumeFields(b, func(num protowire.Number, v uint64, _ []byte) error {
		switch num {
		case symIndex:
			s.Index = int(v)
		case symBit:
			s.Bit = protowire.DecodeBool(v)
		case symSenderBasis:
			s.SenderBasis = photon.Choice(v)
		case symEmitted:
			s.Emitted = int(v)
		case symArrived:
			s.Arrived = int(v)
		case symEveOutcome:
			s.Eve.Outcome = photon.Outcome(protowire.DecodeZigZag(v))
		case symEveBasis:
			s.Eve.Basis = photon.Choice(v)
		case symRegenerated:
			s.Regenerated = protowire.DecodeBool(v)
		case symForwarded:
			s.Forwarded = protowire.DecodeBool(v)
		case symRecvOutcome:
			s.Received.Outcome = photon.Outcome(protowire.DecodeZigZag(v))
		case symReceiverBasis:
			s.Received.Basis = photon.Choice(v)
		}
		return nil
	})
	return s, err
}

// consumeFields walks the fields of a wire-format message, calling f with the
// value of each varint field or the contents of each bytes field. Fields of
// other wire types are skipped.
func consumeFields(b []byte, f func(num protowire.Number, v uint64, raw []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if err := f(num, v, nil); err != nil {
				return err
			}
			b = b[m:]
		case protowire.BytesType:
			raw, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			if err := f(num, 0, raw); err != nil {
				return err
			}
			b = b[m:]
		default:
			m := protowire.ConsumeFieldValue(num, typ, b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			b = b[m:]
		}
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}
