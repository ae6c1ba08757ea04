package gemini

import "fmt"

// buildExtractionPrompt instructs the model to perform OCR only: literal
// Korean text, no translation, no description. The true total count must
// be reported even when only maxNames names are returned.
func buildExtractionPrompt(maxNames int) string {
	return fmt.Sprintf(`You are an OCR engine for Korean restaurant menus.

Your task:
- Read the attached photo and extract the Korean dish names exactly as printed.
- Do NOT translate. Do NOT describe. Extract literal Korean text only.
- Return at most %d dish names, in the order they appear on the menu.
- total_detected MUST be the true number of distinct dishes visible in the
  photo, even when it is larger than %d.
- If the photo is not a Korean restaurant menu, set is_korean_menu to false
  and return an empty dish_names list.
- Output MUST be valid JSON and contain ONLY JSON.

Required JSON schema:
{
  "is_korean_menu": boolean,
  "dish_names": ["string"],
  "total_detected": number
}`, maxNames, maxNames)
}

// buildSynthesisPrompt asks for a complete structured record for one
// Korean dish. The spiciness scale is anchored to reference dishes to
// keep generated values comparable with stored ones.
func buildSynthesisPrompt(koreanName string) string {
	return fmt.Sprintf(`You are a Korean cuisine expert. Describe the dish "%s" as STRICT JSON.

Rules:
- Be factually accurate. Do not invent regional claims you are unsure of.
- description is English only, 1-2 sentences.
- ingredients: the main ingredients, at most 6 entries.
- spicy_level is an integer 0-5 on this anchored scale:
  0 = not spicy (백반), 1 = mild (된장찌개), 2 = noticeable (제육볶음),
  3 = spicy (김치찌개), 4 = very spicy (불닭), 5 = extreme (핵불닭).
- calories is for one typical serving.
- allergens uses common English allergen names (egg, soy, wheat, shellfish...).
- Output MUST be valid JSON and contain ONLY JSON. No markdown, no comments.

Required JSON schema:
{
  "english_name": "string",
  "description": "string",
  "ingredients": ["string"],
  "calories": number,
  "category": "string",
  "spicy_level": number,
  "allergens": ["string"],
  "is_vegetarian": boolean,
  "is_vegan": boolean,
  "serving_size": "string",
  "cooking_method": "string",
  "region": "string"
}`, koreanName)
}
