// Package seed provides the first-run organization hierarchy.
//
// When no chart has been saved yet, the editor starts from [Default]: a
// sales headquarters with two nested sections and five staff. Seeds are
// plain records ([Department], [Person]) mapped to chart nodes by
// [Data.Snapshot]; [LoadFile] reads an alternative seed from YAML:
//
//	departments:
//	  - id: "1"
//	    name: 営業本部
//	    position: {x: 100, y: 100}
//	    width: 800
//	    height: 600
//	persons:
//	  - id: "1"
//	    name: 山田太郎
//	    position: 部長
//	    departmentId: "1"
//	    positionXY: {x: 100, y: 150}
//	    isContacted: true
//
// Seeded snapshots live in memory only until the user saves.
package seed
