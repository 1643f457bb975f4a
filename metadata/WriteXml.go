//******************************************************************************************************
//  WriteXml.go - Gbtc
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
//  Code Modification History:
//  ----------------------------------------------------------------------------------------------------
//  09/23/2021 - J. Ritchie Carroll
//       Generated original version of source code.
//  07/31/2026 - Generated WriteXml, the publisher-side counterpart to ParseXmlDocument.
//
//******************************************************************************************************

package metadata

import (
	"bytes"
	"encoding/xml"
	"strconv"
)

// WriteXml serializes the DataSet as an XSD-annotated XML document of the form produced by
// ParseXmlDocument, suitable for transmission during metadata exchange. dataSetName becomes
// both the root element name and the schema "id" attribute.
func (ds *DataSet) WriteXml(dataSetName string) []byte {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" standalone="yes"?>` + "\n")
	buf.WriteString(`<` + dataSetName + `>` + "\n")

	writeSchema(&buf, ds, dataSetName)

	for _, table := range ds.Tables() {
		for i := 0; i < table.RowCount(); i++ {
			writeRecord(&buf, table, table.Row(i))
		}
	}

	buf.WriteString(`</` + dataSetName + `>`)

	return buf.Bytes()
}

func writeSchema(buf *bytes.Buffer, ds *DataSet, dataSetName string) {
	buf.WriteString(`  <xs:schema id="` + dataSetName + `" xmlns="" ` +
		`xmlns:xs="` + XmlSchemaNamespace + `" ` +
		`xmlns:msdata="` + ExtXmlSchemaDataNamespace + `">` + "\n")
	buf.WriteString(`    <xs:element name="` + dataSetName + `" msdata:IsDataSet="true">` + "\n")
	buf.WriteString(`      <xs:complexType>` + "\n")
	buf.WriteString(`        <xs:choice maxOccurs="unbounded">` + "\n")

	for _, table := range ds.Tables() {
		buf.WriteString(`          <xs:element name="` + escape(table.Name()) + `">` + "\n")
		buf.WriteString(`            <xs:complexType>` + "\n")
		buf.WriteString(`              <xs:sequence>` + "\n")

		for i := 0; i < table.ColumnCount(); i++ {
			column := table.Column(i)
			xsdTypeName, extDataType := xsdDataType(column.Type())

			buf.WriteString(`                <xs:element name="` + escape(column.Name()) + `" type="xs:` + xsdTypeName + `"`)

			if len(extDataType) > 0 {
				buf.WriteString(` msdata:DataType="` + extDataType + `"`)
			}

			if column.Computed() {
				buf.WriteString(` Expression="` + escape(column.Expression()) + `"`)
			}

			buf.WriteString(` minOccurs="0" />` + "\n")
		}

		buf.WriteString(`              </xs:sequence>` + "\n")
		buf.WriteString(`            </xs:complexType>` + "\n")
		buf.WriteString(`          </xs:element>` + "\n")
	}

	buf.WriteString(`        </xs:choice>` + "\n")
	buf.WriteString(`      </xs:complexType>` + "\n")
	buf.WriteString(`    </xs:element>` + "\n")
	buf.WriteString(`  </xs:schema>` + "\n")
}

func writeRecord(buf *bytes.Buffer, table *DataTable, row *DataRow) {
	buf.WriteString(`  <` + table.Name() + `>` + "\n")

	for i := 0; i < table.ColumnCount(); i++ {
		column := table.Column(i)

		if column.Computed() {
			continue
		}

		value, err := row.Value(i)

		if err != nil || value == nil {
			continue
		}

		buf.WriteString(`    <` + column.Name() + `>` + escape(fieldString(column.Type(), value)) + `</` + column.Name() + `>` + "\n")
	}

	buf.WriteString(`  </` + table.Name() + `>` + "\n")
}

func fieldString(dataType DataTypeEnum, value interface{}) string {
	switch dataType {
	case DataType.Boolean:
		return strconv.FormatBool(value.(bool))
	case DataType.DateTime:
		return value.(interface{ Format(string) string }).Format("2006-01-02T15:04:05.999999999-07:00")
	case DataType.Single:
		return strconv.FormatFloat(float64(value.(float32)), 'f', -1, 32)
	case DataType.Decimal, DataType.Double:
		return strconv.FormatFloat(value.(float64), 'f', -1, 64)
	case DataType.Guid:
		return value.(interface{ String() string }).String()
	case DataType.Int8:
		return strconv.FormatInt(int64(value.(int8)), 10)
	case DataType.Int16:
		return strconv.FormatInt(int64(value.(int16)), 10)
	case DataType.Int32:
		return strconv.FormatInt(int64(value.(int32)), 10)
	case DataType.Int64:
		return strconv.FormatInt(value.(int64), 10)
	case DataType.UInt8:
		return strconv.FormatUint(uint64(value.(uint8)), 10)
	case DataType.UInt16:
		return strconv.FormatUint(uint64(value.(uint16)), 10)
	case DataType.UInt32:
		return strconv.FormatUint(uint64(value.(uint32)), 10)
	case DataType.UInt64:
		return strconv.FormatUint(value.(uint64), 10)
	default:
		if s, ok := value.(string); ok {
			return s
		}
		return ""
	}
}

func escape(value string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(value))
	return buf.String()
}
