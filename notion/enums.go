/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package notion

import (
	"fmt"
	"slices"
)

// ObjectType is the kind of a Notion object.
type ObjectType string

const (
	ObjectBlock    ObjectType = "block"
	ObjectDatabase ObjectType = "database"
	ObjectPage     ObjectType = "page"
	ObjectUser     ObjectType = "user"
	ObjectComment  ObjectType = "comment"
)

var objectTypes = []ObjectType{ObjectBlock, ObjectDatabase, ObjectPage, ObjectUser, ObjectComment}

// Valid reports whether t is a known object type.
func (t ObjectType) Valid() bool {
	return slices.Contains(objectTypes, t)
}

// ParseObjectType converts s to an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	return parseEnum(s, objectTypes, "object type")
}

// Color is a Notion text color.
type Color string

const (
	ColorBlue    Color = "blue"
	ColorBrown   Color = "brown"
	ColorDefault Color = "default"
	ColorGray    Color = "gray"
	ColorGreen   Color = "green"
	ColorOrange  Color = "orange"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorRed     Color = "red"
	ColorYellow  Color = "yellow"
)

var colors = []Color{
	ColorBlue, ColorBrown, ColorDefault, ColorGray, ColorGreen,
	ColorOrange, ColorPurple, ColorPink, ColorRed, ColorYellow,
}

func (c Color) Valid() bool {
	return slices.Contains(colors, c)
}

// ParseColor converts s to a Color.
func ParseColor(s string) (Color, error) {
	return parseEnum(s, colors, "color")
}

// BackgroundColor is a Notion background color. There is no default background.
type BackgroundColor string

const (
	BackgroundBlue   BackgroundColor = "blue_background"
	BackgroundBrown  BackgroundColor = "brown_background"
	BackgroundGray   BackgroundColor = "gray_background"
	BackgroundGreen  BackgroundColor = "green_background"
	BackgroundOrange BackgroundColor = "orange_background"
	BackgroundPurple BackgroundColor = "purple_background"
	BackgroundPink   BackgroundColor = "pink_background"
	BackgroundRed    BackgroundColor = "red_background"
	BackgroundYellow BackgroundColor = "yellow_background"
)

var backgroundColors = []BackgroundColor{
	BackgroundBlue, BackgroundBrown, BackgroundGray, BackgroundGreen,
	BackgroundOrange, BackgroundPurple, BackgroundPink, BackgroundRed, BackgroundYellow,
}

func (c BackgroundColor) Valid() bool {
	return slices.Contains(backgroundColors, c)
}

// ParseBackgroundColor converts s to a BackgroundColor.
func ParseBackgroundColor(s string) (BackgroundColor, error) {
	return parseEnum(s, backgroundColors, "background color")
}

func parseEnum[E ~string](s string, members []E, kind string) (E, error) {
	if slices.Contains(members, E(s)) {
		return E(s), nil
	}
	return "", fmt.Errorf("%q is not a valid %s", s, kind)
}
