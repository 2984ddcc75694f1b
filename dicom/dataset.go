// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package dicom provides the parsed-instance data model consumed by the mint
// study builder. A DataSet holds the already parsed Data Elements of one DICOM
// instance as specified in
// [http://dicom.nema.org/medical/dicom/current/output/pdf/part05.pdf].
//
// Unlike a streaming parser, value fields here are fully materialized: text
// and numeric values are raw value-field bytes, encapsulated pixel data is a
// slice of fragments, and sequence items are nested DataSets. Producing a
// DataSet from a DICOM byte stream is the job of an external parser.
package dicom

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
)

// DataElementTag is a unique identifier for a Data Element composed of an unordered pair
// of numbers called the group number and the element number as specified in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10.
//
// The least significant 16 bits is the element number. The most significant 16 bits is the group
// number.
type DataElementTag uint32

// GroupNumber returns the group number component of the DataElementTag
func (t DataElementTag) GroupNumber() uint16 {
	return uint16(t >> 16)
}

// ElementNumber returns the element number component of the DataElementTag
func (t DataElementTag) ElementNumber() uint16 {
	return uint16(t & 0xFFFF)
}

// IsFileMetaElement is true if and only if the Data Element belongs to the
// file meta information group
func (t DataElementTag) IsFileMetaElement() bool {
	return t.GroupNumber() == uint16(0x0002)
}

// DataElement models a DICOM Data Element as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
//
// At most one of Value, Fragments or Items is populated, depending on the
// encoding of the element: Value holds the raw value field bytes of a plain,
// numeric or binary element, Fragments holds the items of an encapsulated
// (compressed) value field where Fragments[0] is the Basic Offset Table slot,
// and Items holds the items of a sequence element.
type DataElement struct {
	Tag DataElementTag

	// Value Representation
	VR *VR

	Value     []byte
	Fragments [][]byte
	Items     []*DataSet
}

// StringValue decodes the element's value field with the given character
// repertoire and strips DICOM value padding (trailing spaces on text,
// trailing NULLs on unique identifiers).
func (e *DataElement) StringValue(repertoire encoding.Encoding) (string, error) {
	decoded, err := repertoire.NewDecoder().Bytes(e.Value)
	if err != nil {
		return "", fmt.Errorf("decoding value of element %08X: %v", uint32(e.Tag), err)
	}
	return strings.TrimRight(string(decoded), " \x00"), nil
}

// IntValue returns the element's value as an integer. Binary integer VRs are
// read in the given byte order, textual VRs (e.g. IS) are parsed as decimal
// strings.
func (e *DataElement) IntValue(order binary.ByteOrder) (int, error) {
	switch e.VR {
	case USVR:
		if len(e.Value) < 2 {
			return 0, fmt.Errorf("element %08X: US value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		return int(order.Uint16(e.Value)), nil
	case SSVR:
		if len(e.Value) < 2 {
			return 0, fmt.Errorf("element %08X: SS value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		return int(int16(order.Uint16(e.Value))), nil
	case ULVR:
		if len(e.Value) < 4 {
			return 0, fmt.Errorf("element %08X: UL value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		return int(order.Uint32(e.Value)), nil
	case SLVR:
		if len(e.Value) < 4 {
			return 0, fmt.Errorf("element %08X: SL value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		return int(int32(order.Uint32(e.Value))), nil
	}

	if e.VR != nil && e.VR.Category == PlainVR {
		s := strings.Trim(string(e.Value), " \x00")
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("element %08X: parsing integer string %q: %v", uint32(e.Tag), s, err)
		}
		return n, nil
	}

	return 0, fmt.Errorf("element %08X: vr is not an integer type", uint32(e.Tag))
}

// IntValues returns all values of a binary integer element (US, SS, UL, SL)
// decoded in the given byte order.
func (e *DataElement) IntValues(order binary.ByteOrder) ([]int, error) {
	var width int
	signed := false
	switch e.VR {
	case USVR:
		width = 2
	case SSVR:
		width, signed = 2, true
	case ULVR:
		width = 4
	case SLVR:
		width, signed = 4, true
	default:
		return nil, fmt.Errorf("element %08X: vr is not a binary integer type", uint32(e.Tag))
	}
	if len(e.Value)%width != 0 {
		return nil, fmt.Errorf("element %08X: %v value field of %v bytes", uint32(e.Tag), e.VR.Name, len(e.Value))
	}
	values := make([]int, 0, len(e.Value)/width)
	for i := 0; i < len(e.Value); i += width {
		switch {
		case width == 2 && signed:
			values = append(values, int(int16(order.Uint16(e.Value[i:]))))
		case width == 2:
			values = append(values, int(order.Uint16(e.Value[i:])))
		case signed:
			values = append(values, int(int32(order.Uint32(e.Value[i:]))))
		default:
			values = append(values, int(order.Uint32(e.Value[i:])))
		}
	}
	return values, nil
}

// TagValues returns the values of an AT element, read as consecutive
// (group number, element number) 16-bit pairs in the given byte order.
func (e *DataElement) TagValues(order binary.ByteOrder) ([]DataElementTag, error) {
	if e.VR != ATVR {
		return nil, fmt.Errorf("element %08X: vr is not AT", uint32(e.Tag))
	}
	if len(e.Value)%4 != 0 {
		return nil, fmt.Errorf("element %08X: AT value field of %v bytes", uint32(e.Tag), len(e.Value))
	}
	tags := make([]DataElementTag, 0, len(e.Value)/4)
	for i := 0; i < len(e.Value); i += 4 {
		group := order.Uint16(e.Value[i:])
		element := order.Uint16(e.Value[i+2:])
		tags = append(tags, DataElementTag(uint32(group)<<16|uint32(element)))
	}
	return tags, nil
}

// FloatValues returns the element's FL or FD values decoded in the given byte
// order. FL values are widened to float64.
func (e *DataElement) FloatValues(order binary.ByteOrder) ([]float64, error) {
	switch e.VR {
	case FLVR:
		if len(e.Value)%4 != 0 {
			return nil, fmt.Errorf("element %08X: FL value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		values := make([]float64, 0, len(e.Value)/4)
		for i := 0; i < len(e.Value); i += 4 {
			values = append(values, float64(math.Float32frombits(order.Uint32(e.Value[i:]))))
		}
		return values, nil
	case FDVR:
		if len(e.Value)%8 != 0 {
			return nil, fmt.Errorf("element %08X: FD value field of %v bytes", uint32(e.Tag), len(e.Value))
		}
		values := make([]float64, 0, len(e.Value)/8)
		for i := 0; i < len(e.Value); i += 8 {
			values = append(values, math.Float64frombits(order.Uint64(e.Value[i:])))
		}
		return values, nil
	}
	return nil, fmt.Errorf("element %08X: vr is not a float type", uint32(e.Tag))
}

// DataSet models a parsed DICOM Data Set as defined in
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_3.10
//
// Elements appear in the order they were encountered in the instance. File
// meta elements (group 0002) are kept separate so that consumers can choose
// whether to process them.
type DataSet struct {
	FileMetaElements []*DataElement
	Elements         []*DataElement
}

// Element returns the dataset element with the given tag, or nil if the
// dataset does not contain it.
func (ds *DataSet) Element(tag DataElementTag) *DataElement {
	for _, elem := range ds.Elements {
		if elem.Tag == tag {
			return elem
		}
	}
	return nil
}

// StringValue returns the decoded string value of the element with the given
// tag, using the dataset's declared specific character set. The empty string
// is returned when the dataset does not contain the tag.
func (ds *DataSet) StringValue(tag DataElementTag) (string, error) {
	elem := ds.Element(tag)
	if elem == nil {
		return "", nil
	}
	repertoire, err := ds.CharacterSet()
	if err != nil {
		return "", err
	}
	return elem.StringValue(repertoire)
}

// IntValue returns the integer value of the element with the given tag, or
// defaultValue when the dataset does not contain the tag.
func (ds *DataSet) IntValue(tag DataElementTag, order binary.ByteOrder, defaultValue int) (int, error) {
	elem := ds.Element(tag)
	if elem == nil {
		return defaultValue, nil
	}
	return elem.IntValue(order)
}

// CharacterSet returns the character repertoire declared by the dataset's
// SpecificCharacterSet element, or the default repertoire if the element is
// absent or empty.
func (ds *DataSet) CharacterSet() (encoding.Encoding, error) {
	elem := ds.Element(SpecificCharacterSetTag)
	if elem == nil {
		return defaultCharacterRepertoire, nil
	}
	// The defined term itself is always ASCII-compatible, per PS3.2 D.6.2.
	term := strings.Trim(string(elem.Value), " \x00")
	if term == "" {
		return defaultCharacterRepertoire, nil
	}
	return lookupEncoding(term)
}
