package usecase

import (
	"strings"

	"github.com/kirillkom/regulation-assistant/internal/core/domain"
)

const systemPrompt = `Sen bir üniversite bilgi asistanısın. Verilen belgelerden kesin, doğru ve yararlı bilgiler çıkararak cevap vermelisin.

KURALLAR:
1. SADECE sorulan soruyu yanıtla - başka konuları dahil etme
2. Sadece verilen belgelerden bilgi kullan
3. Belirsiz olduğun konularda "belirtilmemiş" de
4. Sayısal bilgileri (tarih, süre, puan) kesin olarak belirt
5. Alakasız bilgileri yanıta dahil etme
6. Tek bir konuya odaklan
7. Kaynak belge adını cevabın sonunda belirt
8. Türkçe dilbilgisi kurallarına uy`

const singleQuestionDirective = `

ÖNEMLI: Sadece kullanıcının şu anda sorduğu soruya cevap ver. Önceki sorular veya konularla ilgili bilgi verme.
Bu sorguya özgü ve kesin bir yanıt ver. Başka konulara değinme.`

const ragPromptTemplate = `
{system_prompt}

SORU: {question}

İLGİLİ BELGELER:
{context}

ÖNEMLİ: Sadece soruyla DOĞRUDAN alakalı bilgileri yanıtla. Başka konulardan bahsetme!

CEVAP (Kısa, net ve sadece soruyla alakalı):
`

var categoryInstructions = map[domain.Category]string{
	domain.CategoryProcedure:    "Prosedür sorularında adım adım açıklama yap. Sıralı işlemler ver.",
	domain.CategoryTemporal:     "Tarih ve zaman bilgilerini kesin olarak belirt. 'yaklaşık' gibi belirsiz ifadeler kullanma.",
	domain.CategoryQuantitative: "Sayısal bilgileri tam olarak ver. Belirsizlik varsa bunu açıkça belirt.",
	domain.CategoryDefinition:   "Tanımları net ve anlaşılır şekilde yap. Örnekler ver.",
	domain.CategoryExplanation:  "Sebep-sonuç ilişkilerini açıkla. Mantıklı gerekçeler sun.",
	domain.CategoryLocation:     "Yer bilgilerini spesifik olarak belirt.",
	domain.CategoryGeneral:      "Kapsamlı ve düzenli bir açıklama yap.",
}

func instructionFor(category domain.Category) string {
	if text, ok := categoryInstructions[category]; ok {
		return text
	}
	return categoryInstructions[domain.CategoryGeneral]
}

// buildPrompt renders the persona, category instruction and context into
// the final completion prompt.
func buildPrompt(question string, category domain.Category, formattedContext string) string {
	persona := systemPrompt + "\n\n" + instructionFor(category) + singleQuestionDirective
	replacer := strings.NewReplacer(
		"{system_prompt}", persona,
		"{question}", question,
		"{context}", formattedContext,
	)
	return replacer.Replace(ragPromptTemplate)
}
