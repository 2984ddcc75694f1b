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

// Well-known Data Element tags referenced by the study builder, from the DICOM
// data dictionary http://dicom.nema.org/medical/dicom/current/output/html/part06.html
const (
	TransferSyntaxUIDTag    DataElementTag = 0x00020010
	SpecificCharacterSetTag DataElementTag = 0x00080005
	SOPInstanceUIDTag       DataElementTag = 0x00080018
	StudyInstanceUIDTag     DataElementTag = 0x0020000D
	SeriesInstanceUIDTag    DataElementTag = 0x0020000E
	SamplesPerPixelTag      DataElementTag = 0x00280002
	NumberOfFramesTag       DataElementTag = 0x00280008
	RowsTag                 DataElementTag = 0x00280010
	ColumnsTag              DataElementTag = 0x00280011
	BitsAllocatedTag        DataElementTag = 0x00280100
	PixelDataTag            DataElementTag = 0x7FE00010
)
