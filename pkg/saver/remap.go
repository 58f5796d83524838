package saver

import (
	"fmt"

	"github.com/zumolabs/zumo/pkg/gen"
	"github.com/zumolabs/zumo/pkg/zcolor"
)

// RemapFilterCategories rewrites category ids and drops everything not
// mentioned. The remap maps new id -> existing category name. Names must
// exist and no two new ids may target the same name. Annotations whose
// category is dropped are removed, and Count/SubcategoryCount are
// recomputed from the surviving annotations.
func (s *Saver) RemapFilterCategories(remap map[int]string) error {
	oldIDByName := map[string]int{}
	for newID, name := range remap {
		oldID, ok := s.categoryNameToID[name]
		if !ok {
			return fmt.Errorf("%w: category %q (remap target for id %v)", ErrNotFound, name, newID)
		}
		if _, dup := oldIDByName[name]; dup {
			return fmt.Errorf("Category %q is the target of more than one new id", name)
		}
		oldIDByName[name] = oldID
	}

	oldToNew := map[int]int{}
	newCategories := map[int]*Category{}
	for _, newID := range gen.SortedKeys(remap) {
		oldID := oldIDByName[remap[newID]]
		cat := s.Categories[oldID]
		cat.ID = newID
		cat.Count = 0
		for i := range cat.SubcategoryCount {
			cat.SubcategoryCount[i] = 0
		}
		newCategories[newID] = cat
		oldToNew[oldID] = newID
	}

	kept := make([]*Annotation, 0, len(s.Annotations))
	for _, ann := range s.Annotations {
		newID, ok := oldToNew[ann.CategoryID]
		if !ok {
			continue
		}
		ann.CategoryID = newID
		ann.ID = len(kept)
		kept = append(kept, ann)
		cat := newCategories[newID]
		cat.Count++
		if ann.SubcategoryID != nil {
			idx := *ann.SubcategoryID - s.baseID()
			if idx >= 0 && idx < len(cat.SubcategoryCount) {
				cat.SubcategoryCount[idx]++
			}
		}
	}

	dropped := len(s.Annotations) - len(kept)
	s.Categories = newCategories
	s.Annotations = kept
	// Annotation ids changed, so registered seg correspondences are
	// stale. Already-merged geometry survives; only re-parsing would
	// need the correspondences, and remapping happens after parsing.
	s.segColorToAnn = map[string]map[zcolor.RGB]int{}
	if err := s.Reindex(); err != nil {
		return err
	}
	s.log.Infof("Remapped to %v categories, dropped %v annotations", len(newCategories), dropped)
	return nil
}
