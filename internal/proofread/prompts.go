package proofread

import (
	"fmt"
	"strings"

	"github.com/youngsunson/updatev2/internal/model"
)

const systemPrompt = `আপনি একজন অভিজ্ঞ বাংলা ভাষা সম্পাদক ও প্রুফরিডার।
শুধুমাত্র একটি বৈধ JSON অবজেক্ট ফেরত দিন। কোনো ব্যাখ্যা, মার্কডাউন বা কোড ব্লক যোগ করবেন না।
যেকোনো "current", "wrong" বা "currentSentence" ফিল্ডে ইনপুট টেক্সট থেকে শব্দ বা বাক্য অক্ষরে অক্ষরে কপি করুন।`

// emptyResultNote closes every optional stage prompt.
const emptyResultNote = "কোনো পরিবর্তনের প্রয়োজন না থাকলে খালি array ফেরত দিন।"

var toneTraits = map[model.Tone]struct {
	label  string
	traits string
}{
	model.ToneFormal:       {"আনুষ্ঠানিক (Formal)", "আপনি/আপনার সম্বোধন, 'করুন/বলুন' ধরনের ক্রিয়াপদ, সম্পূর্ণ বাক্য"},
	model.ToneInformal:     {"অনানুষ্ঠানিক (Informal)", "তুমি/তুই সম্বোধন, কথ্য শব্দ, সহজ বাক্য"},
	model.ToneProfessional: {"পেশাদার (Professional)", "স্পষ্ট ও আত্মবিশ্বাসী ভাষা, কর্মক্ষেত্রের শব্দভাণ্ডার"},
	model.ToneFriendly:     {"বন্ধুত্বপূর্ণ (Friendly)", "উষ্ণ সম্বোধন, ইতিবাচক ও আন্তরিক শব্দ"},
	model.ToneRespectful:   {"সম্মানজনক (Respectful)", "সম্মানসূচক সম্বোধন, বিনীত অনুরোধ"},
	model.TonePersuasive:   {"প্রভাবশালী (Persuasive)", "জোরালো শব্দ, তাগিদ সৃষ্টি, সুফলের উপর জোর"},
	model.ToneNeutral:      {"নিরপেক্ষ (Neutral)", "বস্তুনিষ্ঠ ও আবেগহীন শব্দচয়ন"},
	model.ToneAcademic:     {"শিক্ষামূলক (Academic)", "পরিভাষা, তৃতীয় পুরুষ, সুগঠিত জটিল বাক্য"},
}

var registerRules = map[model.Register]string{
	model.RegisterSadhu:   "টেক্সটটিকে সাধু রীতিতে রূপান্তরের জন্য বিশ্লেষণ করুন। ক্রিয়াপদ (যেমন করছি -> করিতেছি, করল -> করিল), সর্বনাম (তার -> তাহার) ও অব্যয় বদলান।",
	model.RegisterCholito: "টেক্সটটিকে চলিত রীতিতে রূপান্তরের জন্য বিশ্লেষণ করুন। ক্রিয়াপদ (যেমন করিতেছি -> করছি), সর্বনাম (তাহার -> তার) ও অব্যয় বদলান।",
}

func quoteText(sb *strings.Builder, text string) {
	sb.WriteString("বিশ্লেষণের জন্য টেক্সট:\n\"\"\"\n")
	sb.WriteString(text)
	sb.WriteString("\n\"\"\"\n\n")
}

func buildCorrectnessPrompt(text string) string {
	var sb strings.Builder
	quoteText(&sb, text)

	sb.WriteString(`নির্দেশনা:
১. বানান: কেবল নিশ্চিত বানান ভুল চিহ্নিত করুন (যুক্তাক্ষর, ণত্ব-ষত্ব বিধান)।
২. যতিচিহ্ন: লাইন ব্রেক বজায় রাখুন, আলাদা অনুচ্ছেদ জোড়া লাগাবেন না। শিরোনাম, কবিতার পঙক্তি বা তালিকার শেষে দাঁড়ি না থাকলে ভুল ধরবেন না। শুধু পূর্ণ বাক্যের শেষে যতিচিহ্নের অভাব ধরুন।
৩. ভাষারীতি: একই লেখায় সাধু ও চলিত রীতির মিশ্রণ আছে কিনা দেখুন।
৪. শ্রুতিমাধুর্য: যেসব শব্দ বা বাক্যাংশ আরও সাবলীল হতে পারে সেগুলোর বিকল্প দিন।

JSON গঠন:
{
  "spellingErrors": [{"wrong": "ভুল শব্দ", "suggestions": ["সঠিক রূপ"], "position": 0}],
  "languageStyleMixing": {
    "detected": false,
    "recommendedStyle": "সাধু অথবা চলিত",
    "reason": "সংক্ষিপ্ত কারণ",
    "corrections": [{"current": "শব্দ", "suggestion": "সংশোধন", "type": "সাধু→চলিত"}]
  },
  "punctuationIssues": [{"issue": "সমস্যা", "currentSentence": "ইনপুটের বাক্য", "correctedSentence": "সংশোধিত বাক্য", "explanation": "ব্যাখ্যা"}],
  "euphonyImprovements": [{"current": "শব্দ বা বাক্যাংশ", "suggestions": ["বিকল্প"], "reason": "কারণ"}]
}`)
	return sb.String()
}

func buildTonePrompt(text string, tone model.Tone) string {
	t := toneTraits[tone]

	var sb strings.Builder
	fmt.Fprintf(&sb, "টেক্সটটিকে %s টোনে আনার জন্য বিশ্লেষণ করুন। বৈশিষ্ট্য: %s।\n\n", t.label, t.traits)
	quoteText(&sb, text)
	sb.WriteString(`কাজ:
১. প্রতিটি শব্দ ও বাক্যাংশ যাচাই করুন।
২. কাঙ্ক্ষিত টোনের সাথে মেলে না এমন অংশ চিহ্নিত করুন।
৩. "current" ফিল্ডে অংশটি হুবহু ইনপুট থেকে কপি করুন।

JSON গঠন:
{"toneConversions": [{"current": "বর্তমান অংশ", "suggestion": "প্রস্তাবিত রূপ", "reason": "কারণ"}]}

`)
	sb.WriteString(emptyResultNote)
	return sb.String()
}

func buildStylePrompt(text string, register model.Register) string {
	var sb strings.Builder
	sb.WriteString(registerRules[register])
	sb.WriteString("\n\n")
	quoteText(&sb, text)
	sb.WriteString(`সতর্কতা:
- "current" ফিল্ডে শব্দটি হুবহু ইনপুট থেকে কপি করুন।
- যে শব্দের পরিবর্তন দরকার নেই তা বাদ দিন।

JSON গঠন:
{"styleConversions": [{"current": "বর্তমান শব্দ", "suggestion": "রূপান্তরিত শব্দ", "type": "ক্রিয়াপদ/সর্বনাম/অব্যয়"}]}

`)
	sb.WriteString(emptyResultNote)
	return sb.String()
}

func buildContentPrompt(text string) string {
	var sb strings.Builder
	sb.WriteString("লেখাটি কোন ধরনের (যেমন চিঠি, আবেদনপত্র, প্রবন্ধ, গল্প, প্রতিবেদন) তা নির্ধারণ করুন, সংক্ষেপে বর্ণনা দিন, কোন প্রয়োজনীয় অংশ অনুপস্থিত তা জানান এবং উন্নতির পরামর্শ দিন।\n\n")
	quoteText(&sb, text)
	sb.WriteString(`JSON গঠন:
{"contentType": "ধরন", "description": "সংক্ষিপ্ত বর্ণনা", "missingElements": ["অনুপস্থিত অংশ"], "suggestions": ["পরামর্শ"]}`)
	return sb.String()
}
