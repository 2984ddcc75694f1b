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

package dicom

import (
	"fmt"
)

// VRCategory groups Value Representations by how the study builder stores
// their values. The four categories form a closed set matched once per
// element.
type VRCategory int

const (
	// PlainVR is for value fields stored as decoded text, including textual
	// numbers and binary integers rendered to text
	PlainVR VRCategory = iota

	// FloatVR is for FL and FD, whose raw bytes are retained alongside the
	// text rendition so byte order can be canonicalized later
	FloatVR

	// BinaryVR is for opaque byte values (OB, OW, OF, OL, OD, UN)
	BinaryVR

	// SequenceVR is for VR: SQ
	SequenceVR
)

// VR models the DICOM Value Representations (VR)
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
type VR struct {
	// Name represents the 2-character VR Code
	Name string

	Category VRCategory
}

var vrLookupMap = map[string]*VR{}

func newVR(text string, category VRCategory) *VR {
	vr := &VR{text, category}
	vrLookupMap[vr.Name] = vr

	return vr
}

// LookupVR returns the VR with the given 2-character code
func LookupVR(name string) (*VR, error) {
	r, ok := vrLookupMap[name]
	if !ok {
		return nil, fmt.Errorf("unknown vr name: %v", name)
	}
	return r, nil
}

// VR list obtained from
// http://dicom.nema.org/medical/dicom/current/output/html/part05.html#sect_6.2
var (
	// textual VRs
	CSVR = newVR("CS", PlainVR)
	SHVR = newVR("SH", PlainVR)
	LOVR = newVR("LO", PlainVR)
	STVR = newVR("ST", PlainVR)
	LTVR = newVR("LT", PlainVR)
	ASVR = newVR("AS", PlainVR)

	// person name
	PNVR = newVR("PN", PlainVR)

	// application entity
	AEVR = newVR("AE", PlainVR)

	// dates/time VR
	DAVR = newVR("DA", PlainVR)
	TMVR = newVR("TM", PlainVR)
	DTVR = newVR("DT", PlainVR)

	// textual numbers
	ISVR = newVR("IS", PlainVR)
	DSVR = newVR("DS", PlainVR)

	// binary integers
	SSVR = newVR("SS", PlainVR)
	USVR = newVR("US", PlainVR)
	SLVR = newVR("SL", PlainVR)
	ULVR = newVR("UL", PlainVR)

	// binary floats
	FLVR = newVR("FL", FloatVR)
	FDVR = newVR("FD", FloatVR)

	// large binary sequences
	OBVR = newVR("OB", BinaryVR)
	ODVR = newVR("OD", BinaryVR)
	OLVR = newVR("OL", BinaryVR)
	OWVR = newVR("OW", BinaryVR)
	OFVR = newVR("OF", BinaryVR)

	// unlimited char
	UCVR = newVR("UC", PlainVR)

	// unknown
	UNVR = newVR("UN", BinaryVR)

	// URL
	URVR = newVR("UR", PlainVR)

	// unlimited text
	UTVR = newVR("UT", PlainVR)

	// attribute tag
	ATVR = newVR("AT", PlainVR)

	// unique identifier
	UIVR = newVR("UI", PlainVR)

	// sequence
	SQVR = newVR("SQ", SequenceVR)
)
