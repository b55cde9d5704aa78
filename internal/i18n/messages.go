package i18n

var defaultMessages = `
	[app_usage]
	other = "Generate release notes for pull requests using AI"

	[app_description]
	other = "notaprensa fetches the diff of a pull request, summarizes it with Gemini and posts a release notes preview as a PR comment. A maintainer can then publish the notes to a GitHub release."

	[help_command_usage]
	other = "Shows help"

	[notes_command_usage]
	other = "Generate a release notes preview for a pull request"

	[publish_command_usage]
	other = "Publish cached release notes to a GitHub release"

	[handle_comment_command_usage]
	other = "Process a PR comment that may contain a publish command"

	[config_command_usage]
	other = "Show or update the configuration"

	[flag_repo_usage]
	other = "Repository in owner/name form"

	[flag_pr_usage]
	other = "Pull request number"

	[flag_no_cache_usage]
	other = "Ignore cached notes and regenerate"

	[flag_no_comment_usage]
	other = "Print the preview instead of posting a PR comment"

	[flag_tag_usage]
	other = "Release tag to publish the notes under"

	[flag_comment_id_usage]
	other = "ID of the comment to process"

	[generating_notes]
	other = "Generating release notes for PR #{{.PR}}..."

	[notes_from_cache]
	other = "Using cached notes for {{.Key}}"

	[notes_generated]
	other = "Release notes generated"

	[posting_comment]
	other = "Posting preview comment..."

	[comment_posted]
	other = "Preview comment posted: {{.URL}}"

	[comment_failed]
	other = "Could not post the preview comment: {{.Error}}"

	[publish_running]
	other = "Publishing release notes to tag {{.Tag}}..."

	[release_created]
	other = "Release {{.Tag}} created: {{.URL}}"

	[release_updated]
	other = "Release {{.Tag}} updated: {{.URL}}"

	[publish_not_authorized]
	other = "Publish rejected: {{.Reason}}"

	[publish_rate_limited]
	other = "Too many publish attempts for this PR. Try again in {{.Seconds}} seconds"

	[kill_switch_active]
	other = "The pipeline is disabled by the kill switch file at {{.Path}}"

	[no_command_in_comment]
	other = "The comment does not contain a release notes command"

	[error_missing_api_key]
	other = "Gemini API key is not configured. Set GEMINI_API_KEY or run the config command"

	[error_missing_github_token]
	other = "GitHub token is not configured. Set GITHUB_TOKEN or run the config command"

	[error_invalid_repo]
	other = "Repository must be in owner/name form, got '{{.Repo}}'"

	[error_generating_notes]
	other = "Error generating release notes: {{.Error}}"

	[current_config]
	other = "Current configuration"

	[config_saved]
	other = "Configuration saved to {{.Path}}"

	[config_show_usage]
	other = "Show the current configuration"

	[config_set_lang_usage]
	other = "Set the CLI language"

	[config_set_lang_flag_usage]
	other = "Language code (en or es)"

	[unsupported_language]
	other = "Language '{{.Lang}}' is not supported, use en or es"

	[config_set_github_token_usage]
	other = "Store the GitHub token in the configuration file"

	[flag_github_token_usage]
	other = "GitHub personal access token"

	[invalid_github_token]
	other = "The GitHub token looks too short to be valid"

	[config_set_gemini_key_usage]
	other = "Store the Gemini API key in the configuration file"

	[flag_gemini_key_usage]
	other = "Gemini API key"

	[invalid_gemini_key]
	other = "The Gemini API key looks too short to be valid"
	`
