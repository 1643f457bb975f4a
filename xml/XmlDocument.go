//******************************************************************************************************
//  XmlDocument.go - Gbtc
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

import (
	"encoding/xml"
	"os"
)

// XmlDocument represents an in-memory XML document as a simple node tree, suitable for the
// relatively small, deeply-nested-but-not-huge DataSet schema documents exchanged during
// metadata synchronization.
type XmlDocument struct {
	// Root is the root node of the XmlDocument.
	Root XmlNode

	maxLevel int
}

// UnmarshalXML implements custom unmarshalling for an XmlNode so that attributes and their
// namespaces are captured into maps, and so that the full owner/parent/sibling/level linkage
// used for tree-walking can be established as the tree is decoded.
func (xn *XmlNode) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	xn.Name = start.Name.Local
	xn.Namespace = start.Name.Space
	xn.Attributes = make(map[string]string)
	xn.AttributeNamespaces = make(map[string]string)

	for _, attr := range start.Attr {
		xn.Attributes[attr.Name.Local] = attr.Value
		xn.AttributeNamespaces[attr.Name.Local] = attr.Name.Space
	}

	type node XmlNode
	return d.DecodeElement((*node)(xn), &start)
}

// LoadXml parses XML document data into the XmlDocument.
func (xd *XmlDocument) LoadXml(data []byte) error {
	if err := xml.Unmarshal(data, &xd.Root); err != nil {
		return err
	}

	xd.Root.Owner = xd
	xd.Root.Level = 0
	xd.maxLevel = 0
	xd.traverse(&xd.Root, nil)

	return nil
}

// LoadXmlFromFile parses XML document data from the specified file into the XmlDocument.
func (xd *XmlDocument) LoadXmlFromFile(path string) error {
	data, err := os.ReadFile(path)

	if err != nil {
		return err
	}

	return xd.LoadXml(data)
}

// MaxDepth gets the maximum tree depth of the XmlDocument, i.e., the Level of its deepest node.
func (xd *XmlDocument) MaxDepth() int {
	return xd.maxLevel
}

// SelectNodes finds all root-level child nodes matching xpath expression.
func (xd *XmlDocument) SelectNodes(xpath string) []*XmlNode {
	return xd.Root.SelectNodes(xpath)
}

// traverse walks the freshly unmarshalled tree rooted at node, wiring up Parent/Previous/Next
// sibling pointers, Owner/Level bookkeeping, and the Item/Items lookup maps, none of which
// encoding/xml populates on its own.
func (xd *XmlDocument) traverse(node *XmlNode, parent *XmlNode) {
	node.Parent = parent
	node.Owner = xd

	if node.Level > xd.maxLevel {
		xd.maxLevel = node.Level
	}

	node.Item = make(map[string]*XmlNode)
	node.Items = make(map[string][]*XmlNode)

	var previous *XmlNode

	for i := range node.ChildNodes {
		child := &node.ChildNodes[i]
		child.Level = node.Level + 1

		child.Previous = previous

		if previous != nil {
			previous.Next = child
		}

		previous = child

		if _, found := node.Item[child.Name]; !found {
			node.Item[child.Name] = child
		}

		node.Items[child.Name] = append(node.Items[child.Name], child)

		xd.traverse(child, node)
	}
}
