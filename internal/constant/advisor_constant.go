package constant

// Recommendation categories. These are the JSON keys the model is asked to emit.
const (
	CategoryLanguages      = "推奨するプログラミング言語"
	CategoryTools          = "ツール、開発環境"
	CategoryCostAndPeriod  = "必要なコストと期間"
	CategoryConsiderations = "その他検討が必要なこと"

	FieldLanguage = "言語"
	FieldTool     = "ツール"
	FieldReason   = "理由"
	FieldCost     = "コスト"
	FieldPeriod   = "期間"

	NextQuestionsKey = "next_questions"
)

// User-facing fallback texts.
const (
	InfoUnavailable      = "情報が取得できませんでした。"
	InfoMissing          = "情報がありません。"
	ValueUnknown         = "不明"
	ReasonMissing        = "理由がありません。"
	NextQuestionsMissing = "次の質問を取得できませんでした。"
)

// Notification mail.
const (
	SubmissionMailSubject  = "新しいプロジェクト概要が提出されました"
	SubmissionMailBodyTmpl = "ユーザーが以下のプロジェクト概要を提出しました:\n\n%s"
	MailSentMessage        = "メールが正常に送信されました。"
	MailFailedMessageTmpl  = "メールの送信中にエラーが発生しました: %v"
)

const RecommendationPromptTmpl = "以下のプロジェクト概要に基づいて、以下の項目ごとに推奨事項とその理由を提供してください。\n" +
	"各項目はJSON形式で出力し、推奨事項とその理由を含むようにしてください。\n" +
	"出力フォーマットの例:\n" +
	"{\n" +
	`  "推奨するプログラミング言語": [` + "\n" +
	`    {"言語": "Python", "理由": "Pythonは学習が容易であり、豊富なライブラリが利用可能です。"},` + "\n" +
	`    {"言語": "JavaScript", "理由": "Web開発において広く使用されており、多くのフレームワークがあります。"}` + "\n" +
	`  ],` + "\n" +
	`  "ツール、開発環境": [` + "\n" +
	`    {"ツール": "Visual Studio Code", "理由": "拡張機能が豊富で、高いカスタマイズ性を持ちます。"},` + "\n" +
	`    {"ツール": "Git", "理由": "バージョン管理システムとして標準的に使用されています。"}` + "\n" +
	`  ],` + "\n" +
	`  "必要なコストと期間": {` + "\n" +
	`    "コスト": "100万円～数億円（開発規模、機能、採用するAI技術によって大きく変動）",` + "\n" +
	`    "期間": "6ヶ月～数年（開発規模、機能、採用するAI技術によって大きく変動）"` + "\n" +
	`  },` + "\n" +
	`  "その他検討が必要なこと": [` + "\n" +
	`    "セキュリティ対策",` + "\n" +
	`    "スケーラビリティ"` + "\n" +
	`  ]` + "\n" +
	"}\n\n" +
	"プロジェクト概要: %s\n"

const AdvicePromptTmpl = "プロジェクトの要件: %s\n" +
	"期間: %s\n" +
	"予算: %d円\n" +
	"これらの情報に基づいて、リソース配分やスケジュール管理の提案をしてください。"

const NextQuestionsPromptTmpl = "以下のコンテキストに基づいて、ユーザーが次に尋ねる可能性が高い質問を3つ提案してください。\n" +
	"出力はJSON形式で、各質問をリストとして含めてください。\n" +
	"出力フォーマットの例:\n" +
	"{\n" +
	`  "next_questions": [` + "\n" +
	`    "質問1",` + "\n" +
	`    "質問2",` + "\n" +
	`    "質問3"` + "\n" +
	`  ]` + "\n" +
	"}\n\n" +
	"コンテキスト: %s\n"

// FollowUpPromptTmpl answers a suggested next question with the wizard context.
const FollowUpPromptTmpl = "プロジェクトの要件: %s\n" +
	"期間: %s\n" +
	"予算: %d円\n" +
	"これまでのアドバイス: %s\n\n" +
	"上記を踏まえて、次の質問に簡潔に回答してください。\n" +
	"質問: %s"
