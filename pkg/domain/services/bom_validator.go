package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/vsinha/supplyadvisor/pkg/domain/entities"
)

// BOMValidator provides validation for technology structure integrity
type BOMValidator struct{}

// NewBOMValidator creates a new BOM validator
func NewBOMValidator() *BOMValidator {
	return &BOMValidator{}
}

// DuplicateLine is an ingredient listed twice in one technology
type DuplicateLine struct {
	TechnologyID int64
	IngredientID entities.ProductID
}

// ValidationResult contains the results of BOM validation
type ValidationResult struct {
	HasCycles          bool
	CyclePaths         [][]entities.ProductID
	DuplicateLines     []DuplicateLine
	UnknownIngredients []entities.ProductID
	Errors             []string
}

// Valid reports whether no problem was found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins the problems into one error, nil when valid
func (r *ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.New(strings.Join(r.Errors, "; "))
}

// ValidateTechnologies checks that every ingredient is a known product, that
// no technology lists an ingredient twice and that no product requires itself
// through its sub-assemblies. A nil product list skips the ingredient check.
func (v *BOMValidator) ValidateTechnologies(techs []*entities.Technology, products []*entities.Product) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:         make([][]entities.ProductID, 0),
		DuplicateLines:     make([]DuplicateLine, 0),
		UnknownIngredients: make([]entities.ProductID, 0),
		Errors:             make([]string, 0),
	}

	result.CyclePaths = v.detectCycles(v.buildAdjacencyMap(techs))
	result.HasCycles = len(result.CyclePaths) > 0
	result.DuplicateLines = v.detectDuplicateLines(techs)
	if products != nil {
		result.UnknownIngredients = v.detectUnknownIngredients(techs, products)
	}

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("BOM cycle detected: %v", cycle))
	}
	if len(result.DuplicateLines) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Found %d duplicate BOM lines", len(result.DuplicateLines)))
	}
	if len(result.UnknownIngredients) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Unknown ingredients: %v", result.UnknownIngredients))
	}
	return result
}

// buildAdjacencyMap creates product -> ingredient edges over every technology revision
func (v *BOMValidator) buildAdjacencyMap(techs []*entities.Technology) map[entities.ProductID][]entities.ProductID {
	adjacency := make(map[entities.ProductID][]entities.ProductID)
	seen := make(map[[2]entities.ProductID]bool)

	for _, t := range techs {
		for _, line := range t.Lines {
			edge := [2]entities.ProductID{t.ProductID, line.IngredientID}
			if seen[edge] {
				continue
			}
			seen[edge] = true
			adjacency[t.ProductID] = append(adjacency[t.ProductID], line.IngredientID)
		}
	}
	return adjacency
}

// detectCycles runs a DFS from every product in id order
func (v *BOMValidator) detectCycles(adjacency map[entities.ProductID][]entities.ProductID) [][]entities.ProductID {
	visited := make(map[entities.ProductID]bool)
	onStack := make(map[entities.ProductID]bool)
	cycles := make([][]entities.ProductID, 0)

	roots := make([]entities.ProductID, 0, len(adjacency))
	for id := range adjacency {
		roots = append(roots, id)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	for _, root := range roots {
		if !visited[root] {
			v.dfsDetectCycle(root, adjacency, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func (v *BOMValidator) dfsDetectCycle(
	current entities.ProductID,
	adjacency map[entities.ProductID][]entities.ProductID,
	visited map[entities.ProductID]bool,
	onStack map[entities.ProductID]bool,
	path []entities.ProductID,
	cycles *[][]entities.ProductID,
) {
	visited[current] = true
	onStack[current] = true
	path = append(path, current)

	for _, child := range adjacency[current] {
		if !visited[child] {
			v.dfsDetectCycle(child, adjacency, visited, onStack, path, cycles)
			continue
		}
		if !onStack[child] {
			continue
		}
		for i, id := range path {
			if id == child {
				cycle := append(append([]entities.ProductID{}, path[i:]...), child)
				*cycles = append(*cycles, cycle)
				break
			}
		}
	}

	onStack[current] = false
}

func (v *BOMValidator) detectDuplicateLines(techs []*entities.Technology) []DuplicateLine {
	duplicates := make([]DuplicateLine, 0)
	for _, t := range techs {
		seen := make(map[entities.ProductID]bool, len(t.Lines))
		for _, line := range t.Lines {
			if seen[line.IngredientID] {
				duplicates = append(duplicates, DuplicateLine{TechnologyID: t.ID, IngredientID: line.IngredientID})
				continue
			}
			seen[line.IngredientID] = true
		}
	}
	return duplicates
}

func (v *BOMValidator) detectUnknownIngredients(techs []*entities.Technology, products []*entities.Product) []entities.ProductID {
	known := make(map[entities.ProductID]bool, len(products))
	for _, p := range products {
		known[p.ID] = true
	}

	unknown := make([]entities.ProductID, 0)
	reported := make(map[entities.ProductID]bool)
	for _, t := range techs {
		for _, line := range t.Lines {
			if !known[line.IngredientID] && !reported[line.IngredientID] {
				reported[line.IngredientID] = true
				unknown = append(unknown, line.IngredientID)
			}
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	return unknown
}

// ValidateProductCodes checks that product codes are unique, since
// substitutes and shortage documents refer to ingredients by code
func (v *BOMValidator) ValidateProductCodes(products []*entities.Product) *ValidationResult {
	result := &ValidationResult{
		Errors: make([]string, 0),
	}

	seen := make(map[string]bool)
	duplicates := make([]string, 0)
	for _, p := range products {
		if seen[p.Code] {
			duplicates = append(duplicates, p.Code)
		} else {
			seen[p.Code] = true
		}
	}

	if len(duplicates) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate product codes found: %v", duplicates))
	}
	return result
}
