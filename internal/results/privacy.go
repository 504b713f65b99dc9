package results

// PrivacySection is one heading of the privacy policy.
type PrivacySection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type PrivacyPolicy struct {
	Title    string           `json:"title"`
	Sections []PrivacySection `json:"sections"`
}

// Privacy is the policy served at /results/privacy.
var Privacy = PrivacyPolicy{
	Title: "প্রাইভেসি পলিসি",
	Sections: []PrivacySection{
		{
			Title: "অটোমেটিক ডাটা কালেকশন",
			Body:  "এই পোর্টালটি ১২ ফেব্রুয়ারি ২০২৬ অনুষ্ঠিত ত্রয়োদশ জাতীয় সংসদ নির্বাচনের ফলাফল এবং রিপোর্টগুলো এআই (Gemini AI) প্রযুক্তির মাধ্যমে অটোমেটিক ভাবে সংগ্রহ এবং আপডেট করে। আমরা কোনো ব্যবহারকারীর ব্যক্তিগত তথ্য ম্যানুয়ালি সংগ্রহ করি না।",
		},
		{
			Title: "তথ্যের নির্ভুলতা",
			Body:  "আমাদের সিস্টেমটি ১২ ফেব্রুয়ারি ২০২৬ এর সকল রিপোর্ট এবং ফলাফল রিয়েল-টাইম ডাটা গ্রাউন্ডিংয়ের মাধ্যমে সরবরাহ করে। তথ্যের যেকোনো সূক্ষ্ম পরিবর্তনের জন্য আমরা নির্বাচন কমিশনের অফিশিয়াল তথ্যের সাথে মিলিয়ে দেখার পরামর্শ দিচ্ছি।",
		},
		{
			Title: "ডেভলপার এবং সিকিউরিটি",
			Body:  "সিস্টেমটি DevSparkSoft IT দ্বারা পরিচালিত এবং এর সকল ডাটা সিকিউরিটি Walid Hasan Taksid নিশ্চিত করেন। কোনো অননুমোদিত ব্যবহারের ক্ষেত্রে কঠোর ব্যবস্থা নেওয়া হবে।",
		},
		{
			Title: "জরুরি যোগাযোগ",
			Body:  "ইমেইল: Walid@Taksid.com, ফোন: +8809649999143",
		},
	},
}
