package deviceicon

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"

	"github.com/tc-hib/winres"
)

// PEExtractor extracts icons from the resources of Windows executables and
// libraries. It follows the shell's index convention: a non-negative index
// selects the n-th icon group, a negative index selects the icon group with
// the resource ID -index.
type PEExtractor struct {
	LargeSize int
	SmallSize int
}

// Extract implements IconExtractor.
func (x *PEExtractor) Extract(containerPath string, index int, large bool) (*Icon, error) {
	rss, err := loadIconResources(containerPath)
	if err != nil {
		return nil, err
	}

	icoData, err := iconGroupICO(rss, index)
	if err != nil {
		return nil, fmt.Errorf("failed to get icon %d of %s: %w", index, containerPath, err)
	}

	size := x.SmallSize
	if large {
		size = x.LargeSize
	}
	return decodeICO(icoData, size)
}

// IconGroup describes an icon group in a container file.
type IconGroup struct {
	Index  int
	ID     string
	Frames int
}

// ListIconGroups returns all icon groups of a container file in index order.
func ListIconGroups(containerPath string) ([]IconGroup, error) {
	rss, err := loadIconResources(containerPath)
	if err != nil {
		return nil, err
	}

	var groups []IconGroup
	walkIconGroups(rss, func(index int, resID winres.Identifier, langID uint16) bool {
		group := IconGroup{
			Index: index,
			ID:    formatIdentifier(resID),
		}
		if icon, err := rss.GetIconTranslation(resID, langID); err == nil {
			buf := &bytes.Buffer{}
			if err := icon.SaveICO(buf); err == nil {
				if decoded, err := decodeICO(buf.Bytes(), 0); err == nil {
					group.Frames = len(decoded.Images())
				}
			}
		}
		groups = append(groups, group)
		return true
	})
	return groups, nil
}

func loadIconResources(containerPath string) (*winres.ResourceSet, error) {
	containerPath = expandEnvVars(containerPath)

	f, err := os.Open(containerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s: %w", containerPath, err)
	}
	defer f.Close() //nolint:errcheck

	rss, err := winres.LoadFromEXESingleType(f, winres.RT_GROUP_ICON)
	if err != nil {
		return nil, fmt.Errorf("failed to get resources of %s: %w", containerPath, err)
	}
	return rss, nil
}

// walkIconGroups calls fn for the first language of every icon group, in
// resource order.
func walkIconGroups(rss *winres.ResourceSet, fn func(index int, resID winres.Identifier, langID uint16) bool) {
	var (
		index = -1
		last  winres.Identifier
	)
	rss.WalkType(winres.RT_GROUP_ICON, func(resID winres.Identifier, langID uint16, _ []byte) bool {
		if last != nil && resID == last {
			// Further translation of the same group.
			return true
		}
		last = resID
		index++
		return fn(index, resID, langID)
	})
}

func iconGroupICO(rss *winres.ResourceSet, index int) ([]byte, error) {
	if index < -math.MaxUint16 {
		return nil, fmt.Errorf("invalid icon resource ID %d", -index)
	}

	var (
		found  bool
		resID  winres.Identifier
		langID uint16
	)
	walkIconGroups(rss, func(i int, id winres.Identifier, lang uint16) bool {
		switch {
		case index >= 0 && i == index:
		case index < 0 && id == winres.ID(-index):
		default:
			return true
		}
		found, resID, langID = true, id, lang
		return false
	})
	if !found {
		return nil, errors.New("no such icon in resources")
	}

	icon, err := rss.GetIconTranslation(resID, langID)
	if err != nil {
		return nil, err
	}

	icoBuf := &bytes.Buffer{}
	if err := icon.SaveICO(icoBuf); err != nil {
		return nil, fmt.Errorf("failed to save ico: %w", err)
	}
	return icoBuf.Bytes(), nil
}

func formatIdentifier(id winres.Identifier) string {
	switch v := id.(type) {
	case winres.ID:
		return strconv.Itoa(int(v))
	case winres.Name:
		return string(v)
	default:
		return ""
	}
}

var windowsEnvVar = regexp.MustCompile(`%([^%]+)%`)

// expandEnvVars expands %VAR% references as found in device icon paths.
// Unknown variables are left as they are.
func expandEnvVars(path string) string {
	return windowsEnvVar.ReplaceAllStringFunc(path, func(match string) string {
		if value, ok := os.LookupEnv(match[1 : len(match)-1]); ok {
			return value
		}
		return match
	})
}
