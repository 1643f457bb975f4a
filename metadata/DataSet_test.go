//******************************************************************************************************
//  DataSet_test.go - Gbtc
//
//  Copyright © 2021, Grid Protection Alliance.  All Rights Reserved.
//
//  Licensed to the Grid Protection Alliance (GPA) under one or more contributor license agreements. See
//  the NOTICE file distributed with this work for additional information regarding copyright ownership.
//  The GPA licenses this file to you under the MIT License (MIT), the "License"; you may not use this
//  file except in compliance with the License. You may obtain a copy of the License at:
//
//      http://opensource.org/licenses/MIT
//
//  Unless agreed to in writing, the subject software distributed under the License is distributed on an
//  "AS-IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. Refer to the
//  License for the specific language governing permissions and limitations.
//
//******************************************************************************************************

package metadata

import "testing"

const sampleDataSet = `<?xml version="1.0" standalone="yes"?>
<DataSet>
  <xs:schema id="DataSet" xmlns="" xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:msdata="urn:schemas-microsoft-com:xml-msdata">
    <xs:element name="DataSet" msdata:IsDataSet="true">
      <xs:complexType>
        <xs:choice maxOccurs="unbounded">
          <xs:element name="MeasurementDetail">
            <xs:complexType>
              <xs:sequence>
                <xs:element name="SignalID" type="xs:string" msdata:DataType="System.Guid" minOccurs="0" />
                <xs:element name="PointTag" type="xs:string" minOccurs="0" />
                <xs:element name="Adder" type="xs:double" minOccurs="0" />
              </xs:sequence>
            </xs:complexType>
          </xs:element>
        </xs:choice>
      </xs:complexType>
    </xs:element>
  </xs:schema>
  <MeasurementDetail>
    <SignalID>9861e1f9-0e2b-4719-a2d3-fc40ee5b0866</SignalID>
    <PointTag>TEST:PT1</PointTag>
    <Adder>1.500000</Adder>
  </MeasurementDetail>
  <MeasurementDetail>
    <SignalID>5f365923-4a6e-4b4a-8b9b-05b02f9e1c3f</SignalID>
    <PointTag>TEST:PT2</PointTag>
    <Adder>0.000000</Adder>
  </MeasurementDetail>
</DataSet>`

func TestParseXml(t *testing.T) {
	dataSet := NewDataSet()

	if err := dataSet.ParseXml([]byte(sampleDataSet)); err != nil {
		t.Fatalf("TestParseXml: unexpected error: %v", err)
	}

	table := dataSet.Table("MeasurementDetail")

	if table == nil {
		t.Fatalf("TestParseXml: expected MeasurementDetail table")
	}

	if table.RowCount() != 2 {
		t.Fatalf("TestParseXml: expected 2 rows, got %d", table.RowCount())
	}

	pointTag, err := table.Row(0).ValueAsStringByName("PointTag")

	if err != nil {
		t.Fatalf("TestParseXml: unexpected error reading PointTag: %v", err)
	}

	if pointTag != "TEST:PT1" {
		t.Fatalf("TestParseXml: expected PointTag \"TEST:PT1\", got %q", pointTag)
	}

	signalID, err := table.Row(0).ValueAsGuidByName("SignalID")

	if err != nil {
		t.Fatalf("TestParseXml: unexpected error reading SignalID: %v", err)
	}

	if signalID.String() != "{9861e1f9-0e2b-4719-a2d3-fc40ee5b0866}" {
		t.Fatalf("TestParseXml: expected SignalID round trip, got %q", signalID.String())
	}
}

func TestWriteXmlRoundTrip(t *testing.T) {
	original := NewDataSet()

	if err := original.ParseXml([]byte(sampleDataSet)); err != nil {
		t.Fatalf("TestWriteXmlRoundTrip: unexpected error: %v", err)
	}

	serialized := original.WriteXml("DataSet")

	reparsed := NewDataSet()

	if err := reparsed.ParseXml(serialized); err != nil {
		t.Fatalf("TestWriteXmlRoundTrip: unexpected error reparsing: %v\n%s", err, serialized)
	}

	table := reparsed.Table("MeasurementDetail")

	if table == nil || table.RowCount() != 2 {
		t.Fatalf("TestWriteXmlRoundTrip: expected 2 rows after round trip")
	}

	pointTag, err := table.Row(1).ValueAsStringByName("PointTag")

	if err != nil || pointTag != "TEST:PT2" {
		t.Fatalf("TestWriteXmlRoundTrip: expected PointTag \"TEST:PT2\" after round trip, got %q (err: %v)", pointTag, err)
	}

	adder, err := table.Row(0).ValueAsDoubleByName("Adder")

	if err != nil || adder != 1.5 {
		t.Fatalf("TestWriteXmlRoundTrip: expected Adder 1.5 after round trip, got %v (err: %v)", adder, err)
	}
}

func TestRemoveTable(t *testing.T) {
	dataSet := NewDataSet()
	dataSet.AddTable(dataSet.CreateTable("Test"))

	if !dataSet.RemoveTable("test") {
		t.Fatalf("TestRemoveTable: expected case-insensitive removal to succeed")
	}

	if dataSet.TableCount() != 0 {
		t.Fatalf("TestRemoveTable: expected 0 tables after removal, got %d", dataSet.TableCount())
	}
}
