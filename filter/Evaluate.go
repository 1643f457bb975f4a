//******************************************************************************************************
//  Evaluate.go - Gbtc
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
//  07/31/2026 - Generated original version of source code.
//
//******************************************************************************************************

package filter

import (
	"fmt"
	"sort"

	"github.com/gridstream/sttp/metadata"
)

// dataRowAdapter bridges a *metadata.DataRow to the rowAccessor interface Predicate.evaluate needs,
// without the filter/Predicate.go file importing the metadata package directly.
type dataRowAdapter struct {
	row *metadata.DataRow
}

func (a dataRowAdapter) ColumnValue(name string) (interface{}, bool) {
	value, err := a.row.ValueByName(name)

	if err != nil {
		return nil, false
	}

	return value, true
}

// Evaluate runs statement against dataSet, returning the matching rows from statement.Table in
// ORDER BY / TOP order. Returns an error if statement.Table does not exist in dataSet.
func Evaluate(dataSet *metadata.DataSet, statement Statement) ([]*metadata.DataRow, error) {
	table := dataSet.Table(statement.Table)

	if table == nil {
		return nil, fmt.Errorf("filter: table %q not found in metadata", statement.Table)
	}

	var matches []*metadata.DataRow

	for i := 0; i < table.RowCount(); i++ {
		row := table.Row(i)

		if statement.Predicate == nil {
			matches = append(matches, row)
			continue
		}

		matched, err := statement.Predicate.evaluate(dataRowAdapter{row: row})

		if err != nil {
			return nil, err
		}

		if matched {
			matches = append(matches, row)
		}
	}

	if statement.OrderBy != "" {
		columnIndex := table.ColumnIndex(statement.OrderBy)

		if columnIndex < 0 {
			return nil, fmt.Errorf("filter: ORDER BY field %q not found in table %q", statement.OrderBy, statement.Table)
		}

		sort.SliceStable(matches, func(i, j int) bool {
			left := matches[i].GetValue(columnIndex)
			right := matches[j].GetValue(columnIndex)

			if statement.OrderByDescending {
				return left > right
			}

			return left < right
		})
	}

	if statement.Top >= 0 && len(matches) > statement.Top {
		matches = matches[:statement.Top]
	}

	return matches, nil
}

// EvaluateAll runs every statement against dataSet, producing a new DataSet limited to the tables
// named by the statements and the rows each statement's predicate selects within that table. This is
// the server-side operation MetadataRefresh's filter-expressions payload drives (spec.md §4.4).
func EvaluateAll(dataSet *metadata.DataSet, statements []Statement) (*metadata.DataSet, error) {
	filtered := metadata.NewDataSet()

	for _, statement := range statements {
		sourceTable := dataSet.Table(statement.Table)

		if sourceTable == nil {
			return nil, fmt.Errorf("filter: table %q not found in metadata", statement.Table)
		}

		rows, err := Evaluate(dataSet, statement)

		if err != nil {
			return nil, err
		}

		destTable := filtered.Table(statement.Table)

		if destTable == nil {
			destTable = filtered.CreateTable(statement.Table)
			destTable.InitColumns(sourceTable.ColumnCount())

			for i := 0; i < sourceTable.ColumnCount(); i++ {
				destTable.AddColumn(destTable.CloneColumn(sourceTable.Column(i)))
			}

			filtered.AddTable(destTable)
		}

		for _, row := range rows {
			destTable.AddRow(destTable.CloneRow(row))
		}
	}

	return filtered, nil
}
