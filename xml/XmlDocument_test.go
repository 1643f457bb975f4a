//******************************************************************************************************
//  XmlDocument_test.go - Gbtc
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

package xml

import "testing"

const sampleSchema = `<?xml version="1.0" standalone="yes"?>
<xs:schema id="DataSet" xmlns="" xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:msdata="urn:schemas-microsoft-com:xml-msdata">
  <xs:element name="DataSet" msdata:IsDataSet="true">
    <xs:complexType>
      <xs:choice maxOccurs="unbounded">
        <xs:element name="MeasurementDetail">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="SignalID" type="xs:string" />
              <xs:element name="PointTag" type="xs:string" />
            </xs:sequence>
          </xs:complexType>
        </xs:element>
        <xs:element name="DeviceDetail">
          <xs:complexType>
            <xs:sequence>
              <xs:element name="Acronym" type="xs:string" />
            </xs:sequence>
          </xs:complexType>
        </xs:element>
      </xs:choice>
    </xs:complexType>
  </xs:element>
</xs:schema>`

var doc XmlDocument

func init() {
	if err := doc.LoadXml([]byte(sampleSchema)); err != nil {
		panic(err)
	}
}

func TestRootLevel(t *testing.T) {
	if doc.Root.Level != 0 {
		t.Fatalf("TestRootLevel: expected root level 0, got %d", doc.Root.Level)
	}

	if doc.Root.Name != "schema" {
		t.Fatalf("TestRootLevel: expected root name \"schema\", got %q", doc.Root.Name)
	}
}

func TestChildNodeLoad(t *testing.T) {
	root := &doc.Root

	if len(root.ChildNodes) != 1 {
		t.Fatalf("TestChildNodeLoad: expected 1 root child node, got %d", len(root.ChildNodes))
	}

	if root.ChildNodes[0].Name != "element" {
		t.Fatalf("TestChildNodeLoad: expected child name \"element\", got %q", root.ChildNodes[0].Name)
	}
}

func TestMaxDepthLoad(t *testing.T) {
	if doc.MaxDepth() != 7 {
		t.Fatalf("TestMaxDepthLoad: expected max depth 7, got %d", doc.MaxDepth())
	}
}

func TestAttributesLoad(t *testing.T) {
	schema := &doc.Root

	if schema.Attributes["id"] != "DataSet" {
		t.Fatalf("TestAttributesLoad: expected id attribute \"DataSet\", got %q", schema.Attributes["id"])
	}

	if len(schema.Attributes) != 4 {
		t.Fatalf("TestAttributesLoad: expected 4 attributes (id plus 3 namespace declarations), got %d", len(schema.Attributes))
	}
}

func TestPrefix(t *testing.T) {
	schema := &doc.Root

	if prefix := schema.Prefix(); prefix != "xs" {
		t.Fatalf("TestPrefix: expected schema prefix \"xs\", got %q", prefix)
	}
}

func TestItemLoad(t *testing.T) {
	element := doc.Root.ChildNodes[0]

	if _, found := element.Item["complexType"]; !found {
		t.Fatalf("TestItemLoad: expected \"complexType\" entry in Item map")
	}
}

func TestItemsLoad(t *testing.T) {
	choice := doc.Root.ChildNodes[0].ChildNodes[0].ChildNodes[0]

	if len(choice.Items["element"]) != 2 {
		t.Fatalf("TestItemsLoad: expected 2 \"element\" siblings under choice, got %d", len(choice.Items["element"]))
	}
}

func TestReverseEnumeration(t *testing.T) {
	choice := doc.Root.ChildNodes[0].ChildNodes[0].ChildNodes[0]
	last := choice.LastChild()

	count := 0
	for node := last; node != nil; node = node.Previous {
		count++
	}

	if count != len(choice.ChildNodes) {
		t.Fatalf("TestReverseEnumeration: expected %d nodes walking backward, got %d", len(choice.ChildNodes), count)
	}
}

func TestSelectNodes(t *testing.T) {
	elements := doc.SelectNodes("element/complexType/choice/element")

	if len(elements) != 2 {
		t.Fatalf("TestSelectNodes: expected 2 matching nodes, got %d", len(elements))
	}
}

func TestSelectNodesPredicate(t *testing.T) {
	elements := doc.SelectNodes("element[@name=DataSet]")

	if len(elements) != 1 {
		t.Fatalf("TestSelectNodesPredicate: expected 1 matching node, got %d", len(elements))
	}
}

func TestPath(t *testing.T) {
	element := &doc.Root.ChildNodes[0]

	if path := element.Path(); path != "//schema/element" {
		t.Fatalf("TestPath: expected \"//schema/element\", got %q", path)
	}
}
