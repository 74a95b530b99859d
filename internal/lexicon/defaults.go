package lexicon

import "github.com/kirillkom/regulation-assistant/internal/core/domain"

// Default returns the built-in Turkish university-regulation tables.
func Default() *Lexicon {
	return &Lexicon{
		StopWords: []string{"bir", "bu", "şu", "o", "ve", "ile", "için", "olan", "olur", "var", "yok"},
		Synonyms: []SynonymGroup{
			{Key: "sınav", Synonyms: []string{"exam", "test", "imtihan", "değerlendirme"}},
			{Key: "not", Synonyms: []string{"puan", "derece", "grade", "değerlendirme"}},
			{Key: "ders", Synonyms: []string{"course", "lesson", "subject", "derslik"}},
			{Key: "öğrenci", Synonyms: []string{"student", "öğrenci", "talebe"}},
			{Key: "hoca", Synonyms: []string{"öğretim görevlisi", "professor", "instructor", "teacher"}},
			{Key: "kayıt", Synonyms: []string{"registration", "enrollment", "kaydolma"}},
			{Key: "mezuniyet", Synonyms: []string{"graduation", "bitirme", "diploma"}},
			{Key: "devamsızlık", Synonyms: []string{"absence", "yoklama", "attendance"}},
			{Key: "geçme", Synonyms: []string{"passing", "başarı", "success"}},
			{Key: "kalma", Synonyms: []string{"failure", "başarısızlık", "tekrar"}},
		},
		Categories: []CategoryRule{
			{Category: domain.CategoryProcedure, Patterns: []string{"nasıl", "how", "adım"}},
			{Category: domain.CategoryTemporal, Patterns: []string{"ne zaman", "when", "tarih"}},
			{Category: domain.CategoryLocation, Patterns: []string{"nerede", "where", "yer"}},
			{Category: domain.CategoryQuantitative, Patterns: []string{"kaç", "how many", "sayı"}},
			{Category: domain.CategoryDefinition, Patterns: []string{"ne", "what", "nedir"}},
			{Category: domain.CategoryExplanation, Patterns: []string{"neden", "why", "sebep"}},
		},
		KeywordWeights: map[string]float64{
			"sınav":      2.0,
			"not":        2.0,
			"ders":       1.5,
			"öğrenci":    1.5,
			"kayıt":      2.0,
			"mezuniyet":  2.0,
			"yönetmelik": 2.5,
			"tarih":      2.0,
			"süre":       2.0,
			"puan":       2.0,
		},
		AcademicKeywords: []string{
			"sınav", "not", "ders", "kredi", "gpa", "ortalama", "mezuniyet",
			"kayıt", "harç", "burs", "devamsızlık", "disiplin", "yönetmelik",
		},
		AcademicTerms: []string{
			"sınav", "not", "kredi", "ders", "öğrenci", "mezuniyet", "kayıt",
			"yönetmelik", "komisyon", "değerlendirme", "başarı",
		},
		QueryStopWords: []string{
			"ve", "ile", "için", "de", "da", "bir", "bu", "şu", "o", "ben", "sen", "biz", "siz", "onlar",
			"nasıl", "ne", "nedir", "kim", "nerede", "neden", "niçin", "hangi", "kaç", "ne zaman",
		},
		CertaintyPhrases: []string{
			"belirtilen", "açıkça", "dokümanda", "yönetmeliğe göre", "şartlar",
			"gereklidir", "zorunludur", "tarih", "süre",
		},
		UncertaintyPhrases: []string{
			"sanırım", "galiba", "muhtemelen", "belki", "tahminimce",
			"emin değilim", "genel olarak", "genellikle",
		},
		Connectives:    []string{"için", "ile", "ve", "ancak", "fakat"},
		ReferenceWords: []string{"belge", "dokuman", "kaynak", "göre"},
		Completeness: []CompletenessRule{
			{QueryPatterns: []string{"nasıl", "how"}, ResponseMarkers: []string{"adım", "önce", "sonra", "şekilde"}},
			{QueryPatterns: []string{"ne zaman", "when", "tarih"}, ResponseMarkers: []string{"tarih", "süre", "gün"}, AcceptDigits: true},
			{QueryPatterns: []string{"kaç", "how many"}, AcceptDigits: true},
		},
		GreetingPhrases: []string{
			"merhaba", "selam", "hello", "hi", "hey", "iyi günler", "günaydın", "iyi akşamlar",
			"nasılsın", "naber", "how are you",
		},
		GoodbyePhrases: []string{
			"güle güle", "hoşça kal", "görüşürüz", "bye", "goodbye", "teşekkür", "sağol", "hoşça kalın",
			"teşekkürler", "thanks", "thank you", "tşk",
		},
		QuestionIndicators: []string{
			"nasıl", "ne", "nerede", "neden", "kim", "hangi", "kaç", "ne zaman",
			"şifre", "parola", "kayıt", "ders", "sınav", "not", "başvuru",
			"eduroam", "öğrenci", "mezuniyet", "devamsızlık", "harç", "burs", "?",
		},
		Topics: []TopicRule{
			{Topic: "bilgisayar_laboratuvari", Keywords: []string{"bilgisayar laboratuvar", "lab", "laboratuvar", "sınav", "su getir", "yiyecek", "içecek"}},
			{Topic: "eduroam", Keywords: []string{"eduroam", "wifi", "internet", "bağlantı", "şifre", "parola", "android", "eap", "phase"}},
			{Topic: "sinav_kurallari", Keywords: []string{"sınav", "kurall", "yapılacak", "yasaklı", "izin"}},
			{Topic: "kimlik_belgesi", Keywords: []string{"kimlik", "belge", "öğrenci kart", "tc kimlik"}},
			{Topic: "kayit_isleri", Keywords: []string{"kayıt", "ders", "kredi", "not", "transkript"}},
			{Topic: "yemek", Keywords: []string{"yemek", "kafeterya", "mensa", "beslenme"}},
			{Topic: "konaklama", Keywords: []string{"yurt", "barınma", "konaklama", "ev"}},
			{Topic: "ulasim", Keywords: []string{"otobüs", "ulaşım", "servis", "ring"}},
			{Topic: "burs", Keywords: []string{"burs", "kredi", "öğrenim", "ücret"}},
			{Topic: "ogrenci_isleri", Keywords: []string{"öğrenci işleri", "işlem", "başvuru", "belge"}},
		},
		DefaultTopic: "genel",
	}
}
