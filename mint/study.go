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

package mint

import (
	"github.com/GoogleCloudPlatform/go-mint-builder/dicom"
)

// Attribute is one entry of a study, series, instance or item container.
//
// Exactly one value form is populated: Value for decoded text, Bytes for an
// inlined binary payload, BinaryID/BinarySize for a reference into the
// BinaryStore, or Items for a sequence. Float attributes are the exception in
// that they carry both the text rendition in Value and the raw bytes in Bytes.
type Attribute struct {
	Tag dicom.DataElementTag

	// VR is the 2-character value representation code of the source element
	VR string

	Value string
	Bytes []byte

	// BinaryID is the index of the attribute's payload in the BinaryStore, or
	// -1 when the attribute holds no store reference
	BinaryID   int
	BinarySize int64
	FrameCount int

	Items []*Item
}

func newAttribute(tag dicom.DataElementTag, vr string) *Attribute {
	return &Attribute{Tag: tag, VR: vr, BinaryID: -1}
}

// IsBinaryReference is true if the attribute's payload lives in the
// BinaryStore rather than inline.
func (a *Attribute) IsBinaryReference() bool {
	return a.BinaryID >= 0
}

// AttributeContainer is the common surface of the four attribute owners:
// Study, Series, Instance and Item.
type AttributeContainer interface {
	// Attribute returns the attribute with the given tag, or nil if the
	// container does not hold one
	Attribute(tag dicom.DataElementTag) *Attribute

	// PutAttribute stores the attribute in the container, replacing any
	// previous attribute with the same tag
	PutAttribute(attr *Attribute)
}

// attributeSet is the ordered tag-unique attribute collection embedded in
// every container.
type attributeSet struct {
	byTag map[dicom.DataElementTag]*Attribute
	order []dicom.DataElementTag
}

// Attribute returns the attribute with the given tag, or nil.
func (s *attributeSet) Attribute(tag dicom.DataElementTag) *Attribute {
	return s.byTag[tag]
}

// PutAttribute stores the attribute, replacing any previous attribute with the
// same tag.
func (s *attributeSet) PutAttribute(attr *Attribute) {
	if s.byTag == nil {
		s.byTag = map[dicom.DataElementTag]*Attribute{}
	}
	if _, ok := s.byTag[attr.Tag]; !ok {
		s.order = append(s.order, attr.Tag)
	}
	s.byTag[attr.Tag] = attr
}

// Attributes returns the container's attributes in insertion order.
func (s *attributeSet) Attributes() []*Attribute {
	attrs := make([]*Attribute, 0, len(s.order))
	for _, tag := range s.order {
		attrs = append(attrs, s.byTag[tag])
	}
	return attrs
}

// Study is the top-level container of one accumulation run: the study-level
// attributes plus all series sharing the study instance UID.
type Study struct {
	attributeSet

	// InstanceUID is set by the first accumulated file that declares a study
	// instance UID and is immutable afterwards
	InstanceUID string

	seriesByUID map[string]*Series
	seriesOrder []string
}

// NewStudy returns an empty study.
func NewStudy() *Study {
	return &Study{seriesByUID: map[string]*Series{}}
}

// Series returns the series with the given series instance UID, or nil.
func (s *Study) Series(uid string) *Series {
	return s.seriesByUID[uid]
}

// PutSeries adds the series to the study. A series with the same UID is
// replaced in place, retaining its position.
func (s *Study) PutSeries(series *Series) {
	if _, ok := s.seriesByUID[series.InstanceUID]; !ok {
		s.seriesOrder = append(s.seriesOrder, series.InstanceUID)
	}
	s.seriesByUID[series.InstanceUID] = series
}

// AllSeries returns the study's series in first-seen order.
func (s *Study) AllSeries() []*Series {
	all := make([]*Series, 0, len(s.seriesOrder))
	for _, uid := range s.seriesOrder {
		all = append(all, s.seriesByUID[uid])
	}
	return all
}

// Series is an ordered group of instances sharing a series instance UID,
// plus the attributes promoted to series level.
type Series struct {
	attributeSet

	InstanceUID string

	instances []*Instance
}

// NewSeries returns an empty series with the given series instance UID.
func NewSeries(uid string) *Series {
	return &Series{InstanceUID: uid}
}

// Instance returns the instance with the given SOP instance UID, or nil.
func (s *Series) Instance(sopInstanceUID string) *Instance {
	for _, inst := range s.instances {
		if inst.SOPInstanceUID == sopInstanceUID {
			return inst
		}
	}
	return nil
}

// PutInstance appends the instance to the series.
func (s *Series) PutInstance(inst *Instance) {
	s.instances = append(s.instances, inst)
}

// Instances returns the series' instances in accumulation order.
func (s *Series) Instances() []*Instance {
	return s.instances
}

// Instance holds one accumulated file's worth of instance-level attributes.
type Instance struct {
	attributeSet

	SOPInstanceUID    string
	TransferSyntaxUID string
}

// Item is an anonymous attribute container nested inside a sequence
// attribute. Items are owned exclusively by their parent attribute and nest
// arbitrarily.
type Item struct {
	attributeSet
}
