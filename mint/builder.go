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

// Package mint builds a consolidated study metadata document plus a store of
// binary payload descriptors from a set of parsed DICOM instances, following
// the MINT (Medical Imaging Network Transport) study model.
//
// To use the package, create a Builder with the study-level and series-level
// promotion tag sets, call Accumulate once per parsed instance of the study,
// and call Finish once when all instances are in:
//
//	builder := mint.NewBuilder(studyLevelTags, seriesLevelTags)
//	for _, instance := range instances {
//		if err := builder.Accumulate(instance.Path, instance.DataSet, instance.Syntax); err != nil {
//			// handle the failed file
//		}
//	}
//	if err := builder.Finish(); err != nil {
//		// handle normalization failure
//	}
//	study, store := builder.Study(), builder.BinaryStore()
//
// Attributes whose tag appears in one of the promotion tag sets are stored in
// the corresponding shared container instead of the originating instance,
// with the study-level set taking precedence over the series-level set. The
// first instance to contribute a promoted tag wins: later occurrences of the
// same tag from other instances are dropped, even when their values differ.
// Values differing across instances at a shared level are rare and losing
// them is accepted behavior.
//
// A Builder is not safe for concurrent use; callers accumulate one instance
// at a time.
package mint

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"

	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

// defaultInlineThreshold is the default minimum byte count of a binary value
// field required to store it in the BinaryStore rather than inline.
const defaultInlineThreshold = 256

// NormalizeFunc is the external post-processing collaborator invoked by
// Finish on the completed study.
type NormalizeFunc func(*Study) error

// Builder accumulates parsed DICOM instances of one study into a Study
// document and a BinaryStore of payload descriptors.
type Builder struct {
	studyLevelTags  TagSet
	seriesLevelTags TagSet

	study *Study
	store *BinaryStore

	inlineThreshold         int
	includeFileMetaElements bool
	normalize               NormalizeFunc
}

// NewBuilder returns a Builder using the given promotion tag sets. The sets
// are consulted read-only for the life of the builder; a tag present in both
// is routed to the study level.
func NewBuilder(studyLevelTags, seriesLevelTags TagSet) *Builder {
	return &Builder{
		studyLevelTags:          studyLevelTags,
		seriesLevelTags:         seriesLevelTags,
		study:                   NewStudy(),
		store:                   &BinaryStore{},
		inlineThreshold:         defaultInlineThreshold,
		includeFileMetaElements: true,
	}
}

// Study returns the study under accumulation.
func (b *Builder) Study() *Study {
	return b.study
}

// BinaryStore returns the builder's binary payload descriptor store.
func (b *Builder) BinaryStore() *BinaryStore {
	return b.store
}

// InlineThreshold returns the minimum byte count of a binary value field
// required to store it in the BinaryStore rather than inline. A threshold of
// 0 stores all binary values in the BinaryStore.
func (b *Builder) InlineThreshold() int {
	return b.inlineThreshold
}

// SetInlineThreshold sets the inline threshold. See InlineThreshold.
func (b *Builder) SetInlineThreshold(threshold int) {
	b.inlineThreshold = threshold
}

// IncludeFileMetaElements reports whether Accumulate processes the file meta
// elements of instances in addition to their dataset elements.
func (b *Builder) IncludeFileMetaElements() bool {
	return b.includeFileMetaElements
}

// SetIncludeFileMetaElements sets whether Accumulate processes file meta
// elements. The default is true.
func (b *Builder) SetIncludeFileMetaElements(include bool) {
	b.includeFileMetaElements = include
}

// SetNormalizer sets the external normalization pass run by Finish.
func (b *Builder) SetNormalizer(normalize NormalizeFunc) {
	b.normalize = normalize
}

// Accumulate merges one parsed instance into the study under accumulation.
// All instances accumulated into a Builder must declare the same study
// instance UID and each must declare a series instance UID. Failures abort
// the instance; whether to retry without the file or abandon the study is the
// caller's policy.
func (b *Builder) Accumulate(path string, ds *dicom.DataSet, syntax dicom.TransferSyntax) error {
	studyUID, err := ds.StringValue(dicom.StudyInstanceUIDTag)
	if err != nil {
		return err
	}
	if studyUID != "" {
		if b.study.InstanceUID == "" {
			b.study.InstanceUID = studyUID
		} else if b.study.InstanceUID != studyUID {
			return &StudyMismatchError{Path: path, Got: studyUID, Want: b.study.InstanceUID}
		}
	}

	seriesUID, err := ds.StringValue(dicom.SeriesInstanceUIDTag)
	if err != nil {
		return err
	}
	if seriesUID == "" {
		return &MissingSeriesUIDError{Path: path}
	}

	series := b.study.Series(seriesUID)
	if series == nil {
		series = NewSeries(seriesUID)
		b.study.PutSeries(series)
	}

	sopInstanceUID, err := ds.StringValue(dicom.SOPInstanceUIDTag)
	if err != nil {
		return err
	}
	instance := &Instance{SOPInstanceUID: sopInstanceUID, TransferSyntaxUID: syntax.UID}
	series.PutInstance(instance)

	// The instance's declared character repertoire applies to all of its text
	// values, including those nested in sequence items.
	repertoire, err := ds.CharacterSet()
	if err != nil {
		return err
	}

	if b.includeFileMetaElements {
		for _, elem := range ds.FileMetaElements {
			if err := b.classify(path, ds, repertoire, series, instance, elem, syntax); err != nil {
				return err
			}
		}
	}
	for _, elem := range ds.Elements {
		if err := b.classify(path, ds, repertoire, series, instance, elem, syntax); err != nil {
			return err
		}
	}

	return nil
}

// Finish runs the external normalization pass on the completed study. It is
// called once, after all instances have been accumulated.
func (b *Builder) Finish() error {
	if b.normalize == nil {
		return nil
	}
	return b.normalize(b.study)
}

// classify routes one top-level element to its destination container: the
// study if its tag is in the study-level set, else the series if its tag is
// in the series-level set, else the instance. An element whose tag is already
// present in the destination shared container is dropped.
func (b *Builder) classify(path string, ds *dicom.DataSet, repertoire encoding.Encoding,
	series *Series, instance *Instance, elem *dicom.DataElement, syntax dicom.TransferSyntax) error {
	switch {
	case b.studyLevelTags.Contains(elem.Tag):
		if b.study.Attribute(elem.Tag) == nil {
			return b.handleElement(path, elem, ds, repertoire, b.study, nil, syntax)
		}
	case b.seriesLevelTags.Contains(elem.Tag):
		if series.Attribute(elem.Tag) == nil {
			return b.handleElement(path, elem, ds, repertoire, series, nil, syntax)
		}
	default:
		return b.handleElement(path, elem, ds, repertoire, instance, nil, syntax)
	}
	return nil
}

// handleElement builds exactly one attribute for the element and stores it in
// the container, dispatching on the element's VR category.
func (b *Builder) handleElement(path string, elem *dicom.DataElement, origin *dicom.DataSet,
	repertoire encoding.Encoding, container AttributeContainer, tagPath []uint32,
	syntax dicom.TransferSyntax) error {
	if elem.VR == nil {
		return &MissingVRError{Path: path, Tag: elem.Tag}
	}

	attr := newAttribute(elem.Tag, elem.VR.Name)

	var err error
	switch elem.VR.Category {
	case dicom.BinaryVR:
		err = b.buildBinary(path, elem, origin, attr, tagPath, syntax)
	case dicom.SequenceVR:
		err = b.buildSequence(path, elem, repertoire, attr, tagPath, syntax)
	case dicom.FloatVR:
		err = buildFloat(elem, attr, syntax)
	default:
		err = buildPlain(elem, repertoire, attr, syntax)
	}
	if err != nil {
		return err
	}

	// Study-level and series-level attributes may be promoted from instances
	// with differing byte orders, so their float bytes are canonicalized to
	// little endian before they are shared.
	switch container.(type) {
	case *Study, *Series:
		standardizeAttribute(attr, syntax.BigEndian())
	}

	container.PutAttribute(attr)
	return nil
}

// buildPlain stores the element's value rendered as text: binary integers
// numerically, attribute tags as 8-digit hexadecimal, and textual values
// decoded with the given character repertoire.
func buildPlain(elem *dicom.DataElement, repertoire encoding.Encoding, attr *Attribute,
	syntax dicom.TransferSyntax) error {
	switch elem.VR {
	case dicom.USVR, dicom.SSVR, dicom.ULVR, dicom.SLVR:
		values, err := elem.IntValues(syntax.ByteOrder())
		if err != nil {
			return err
		}
		rendered := make([]string, 0, len(values))
		for _, v := range values {
			rendered = append(rendered, strconv.Itoa(v))
		}
		attr.Value = strings.Join(rendered, "\\")
		return nil
	case dicom.ATVR:
		tags, err := elem.TagValues(syntax.ByteOrder())
		if err != nil {
			return err
		}
		rendered := make([]string, 0, len(tags))
		for _, tag := range tags {
			rendered = append(rendered, fmt.Sprintf("%08X", uint32(tag)))
		}
		attr.Value = strings.Join(rendered, "\\")
		return nil
	}

	value, err := elem.StringValue(repertoire)
	if err != nil {
		return err
	}
	attr.Value = value
	return nil
}

// buildFloat stores the element's values rendered as text and additionally
// retains the raw byte representation for later canonicalization.
func buildFloat(elem *dicom.DataElement, attr *Attribute, syntax dicom.TransferSyntax) error {
	values, err := elem.FloatValues(syntax.ByteOrder())
	if err != nil {
		return err
	}

	bitSize := 64
	if elem.VR == dicom.FLVR {
		bitSize = 32
	}
	rendered := make([]string, 0, len(values))
	for _, v := range values {
		rendered = append(rendered, strconv.FormatFloat(v, 'g', -1, bitSize))
	}
	attr.Value = strings.Join(rendered, "\\")
	attr.Bytes = elem.Value
	return nil
}

// buildSequence creates one Item per sequence item and recursively dispatches
// the elements inside each item against it, extending the tag path by the
// sequence tag and the item index. Items inherit the enclosing repertoire
// unless they declare a specific character set of their own.
func (b *Builder) buildSequence(path string, elem *dicom.DataElement, repertoire encoding.Encoding,
	attr *Attribute, tagPath []uint32, syntax dicom.TransferSyntax) error {
	seqPath := extendTagPath(tagPath, uint32(elem.Tag))
	for i, itemData := range elem.Items {
		item := &Item{}
		attr.Items = append(attr.Items, item)
		itemPath := extendTagPath(seqPath, uint32(i))

		itemRepertoire := repertoire
		if itemData.Element(dicom.SpecificCharacterSetTag) != nil {
			var err error
			itemRepertoire, err = itemData.CharacterSet()
			if err != nil {
				return err
			}
		}

		for _, child := range itemData.Elements {
			if err := b.handleElement(path, child, itemData, itemRepertoire, item, itemPath, syntax); err != nil {
				return err
			}
		}
	}
	return nil
}

// buildBinary stores an opaque byte value: pixel data is segmented into
// per-frame BinaryStore entries, values below the inline threshold are
// embedded, everything else becomes a single BinaryStore entry.
func (b *Builder) buildBinary(path string, elem *dicom.DataElement, origin *dicom.DataSet,
	attr *Attribute, tagPath []uint32, syntax dicom.TransferSyntax) error {
	elemPath := extendTagPath(tagPath, uint32(elem.Tag))

	if elem.Tag == dicom.PixelDataTag {
		// Pixel data is never inlined, regardless of the threshold.
		return b.segmentPixelData(path, elem, origin, attr, elemPath, syntax)
	}

	if elem.Fragments != nil {
		return &UnexpectedFragmentsError{Path: path, Tag: elem.Tag}
	}

	if len(elem.Value) < b.inlineThreshold {
		attr.Bytes = elem.Value
		return nil
	}

	attr.BinaryID = b.store.AppendNative(path, elemPath, 0, int64(len(elem.Value)))
	attr.BinarySize = int64(len(elem.Value))
	return nil
}

// extendTagPath returns a copy of the tag path with the given components
// appended. Paths are copied because sibling elements extend the same parent
// path.
func extendTagPath(tagPath []uint32, components ...uint32) []uint32 {
	extended := make([]uint32, 0, len(tagPath)+len(components))
	extended = append(extended, tagPath...)
	return append(extended, components...)
}
