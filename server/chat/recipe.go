package chat

import (
	"strings"
	"unicode"
)

// builtinRecipes maps dish names to their ordered instruction lines.
var builtinRecipes = map[string][]string{
	"menemen": {
		"Malzemeler: 3 domates, 3 yumurta, 2 sivri biber, 1 yemek kaşığı tereyağı, tuz.",
		"1) Biberleri küçük doğra, tereyağında 2-3 dk sotele.",
		"2) Doğranmış domatesleri ekle, suyunu biraz çekene kadar pişir.",
		"3) Yumurtaları ekle; karıştırarak ya da bütün bırakıp pişir.",
		"4) Tuzla tadını ayarla. İsteğe göre pul biber/peynir eklenebilir.",
	},
	"pilav": {
		"Malzemeler: 1 su bardağı pirinç, 1,5 su bardağı sıcak su, 1 yemek kaşığı tereyağı, 1 yemek kaşığı sıvı yağ, tuz.",
		"1) Pirinci 10-15 dk ılık suda beklet, süz.",
		"2) Tencerede yağları erit, pirinci 2-3 dk kavur.",
		"3) Sıcak su ve tuzu ekle; kısık ateşte suyunu çekene kadar pişir.",
		"4) 10 dk demlendir, kapağı açmadan beklet.",
	},
	"kuru fasulye": {
		"Malzemeler: 2 su bardağı kuru fasulye (önceden ıslatılmış), 1 soğan, 1 yemek kaşığı salça, 2 yemek kaşığı sıvı yağ, tuz.",
		"1) Soğanı yemeklik doğra, yağda pembeleştir.",
		"2) Salçayı ekle kısa kavur, fasulyeyi ekle.",
		"3) Üzerini 2-3 parmak geçecek sıcak su ekle; kısık ateşte yumuşayana kadar pişir.",
		"4) Tuz ayarla; istersen sucuk/pastırma eklenebilir.",
	},
}

// lookupBuiltinRecipe returns the formatted built-in recipe whose dish
// name occurs in the input, or "".
func lookupBuiltinRecipe(input string) string {
	lowered := strings.ToLowerSpecial(unicode.TurkishCase, input)
	for name, lines := range builtinRecipes {
		if strings.Contains(lowered, name) {
			return "🍳 " + titleCase(name) + " Tarifi (kısa ve net)\n" + strings.Join(lines, "\n")
		}
	}
	return ""
}

// titleCase uppercases the first letter of each word with Turkish
// casing, so "kuru fasulye" becomes "Kuru Fasulye".
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.TurkishCase.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
