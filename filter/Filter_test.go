//******************************************************************************************************
//  Filter_test.go - Gbtc
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

package filter

import (
	"testing"

	"github.com/gridstream/sttp/metadata"
)

func newMeasurementDetailDataSet() *metadata.DataSet {
	dataSet := metadata.NewDataSet()
	table := dataSet.CreateTable("MeasurementDetail")
	table.InitColumns(2)
	table.AddColumn(table.CreateColumn("PointTag", metadata.DataType.String, ""))
	table.AddColumn(table.CreateColumn("SignalType", metadata.DataType.String, ""))
	dataSet.AddTable(table)

	rows := []struct {
		tag  string
		kind string
	}{
		{"TEST:PT1", "FREQ"},
		{"TEST:PT2", "STAT"},
		{"TEST:PT3", "VPHM"},
		{"TEST:PT4", "STAT"},
	}

	for _, r := range rows {
		row := table.CreateRow()
		row.SetValueByName("PointTag", r.tag)
		row.SetValueByName("SignalType", r.kind)
		table.AddRow(row)
	}

	return dataSet
}

func TestParseStatementBasic(t *testing.T) {
	statement, err := ParseStatement("FILTER MeasurementDetail WHERE SignalType <> 'STAT'")

	if err != nil {
		t.Fatalf("ParseStatement: unexpected error: %v", err)
	}

	if statement.Table != "MeasurementDetail" {
		t.Fatalf("ParseStatement: expected table MeasurementDetail, got %q", statement.Table)
	}

	dataSet := newMeasurementDetailDataSet()
	rows, err := Evaluate(dataSet, statement)

	if err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Evaluate: expected 2 non-STAT rows, got %d", len(rows))
	}
}

func TestParseStatementOrderByTop(t *testing.T) {
	statement, err := ParseStatement("FILTER MeasurementDetail WHERE SignalType = 'STAT' ORDER BY PointTag DESC TOP 1")

	if err != nil {
		t.Fatalf("ParseStatement: unexpected error: %v", err)
	}

	dataSet := newMeasurementDetailDataSet()
	rows, err := Evaluate(dataSet, statement)

	if err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Evaluate: expected exactly 1 row from TOP 1, got %d", len(rows))
	}

	tag, _ := rows[0].ValueAsStringByName("PointTag")

	if tag != "TEST:PT4" {
		t.Fatalf("Evaluate: expected TEST:PT4 (descending order), got %q", tag)
	}
}

func TestParsePredicateLikeAndIn(t *testing.T) {
	dataSet := newMeasurementDetailDataSet()

	likePredicate, err := ParsePredicate("PointTag LIKE 'TEST:PT%'")

	if err != nil {
		t.Fatalf("ParsePredicate: unexpected error: %v", err)
	}

	rows, err := Evaluate(dataSet, Statement{Table: "MeasurementDetail", Predicate: likePredicate, Top: -1})

	if err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}

	if len(rows) != 4 {
		t.Fatalf("Evaluate: expected all 4 rows to match LIKE pattern, got %d", len(rows))
	}

	inPredicate, err := ParsePredicate("SignalType IN ('FREQ', 'VPHM')")

	if err != nil {
		t.Fatalf("ParsePredicate: unexpected error: %v", err)
	}

	rows, err = Evaluate(dataSet, Statement{Table: "MeasurementDetail", Predicate: inPredicate, Top: -1})

	if err != nil {
		t.Fatalf("Evaluate: unexpected error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("Evaluate: expected 2 rows from IN list, got %d", len(rows))
	}
}

func TestParseStatementsMultiple(t *testing.T) {
	statements, err := ParseStatements("FILTER MeasurementDetail WHERE SignalType = 'FREQ'; FILTER MeasurementDetail WHERE SignalType = 'STAT'")

	if err != nil {
		t.Fatalf("ParseStatements: unexpected error: %v", err)
	}

	if len(statements) != 2 {
		t.Fatalf("ParseStatements: expected 2 statements, got %d", len(statements))
	}

	dataSet := newMeasurementDetailDataSet()
	filtered, err := EvaluateAll(dataSet, statements)

	if err != nil {
		t.Fatalf("EvaluateAll: unexpected error: %v", err)
	}

	table := filtered.Table("MeasurementDetail")

	if table == nil || table.RowCount() != 3 {
		t.Fatalf("EvaluateAll: expected 3 combined rows, got table=%v", table)
	}
}
