package prompts

// GetDescribePrompt returns the instruction sent together with a screenshot
// to obtain a detailed textual description of the page.
func GetDescribePrompt() string {
	return `
		Explain what kind of a web page is shown in the image above.
		Be as descriptive as possible and include all the necessary details.
		To create a super detailed description of a screenshot of a webpage, include the following elements:

		General Layout: Describe the overall structure, such as headers, footers, sidebars, and main content areas.
		Header Details: Mention any logos, navigation menus, search bars, and additional elements in the header.
		Main Content: Describe the primary content, including text, images, videos, and other media. Mention specific text content, font styles, and sizes.
		Sidebar Content: Detail any sidebar content such as ads, additional navigation links, or featured articles.
		Footer Details: Include descriptions of footer content like copyright information, additional navigation, and social media links.
		Interactive Elements: Note any buttons, links, forms, or other interactive elements and their states (e.g., hover effects).
		Colors and Themes: Describe the color scheme, background colors, and any thematic elements.
		Additional Details: Include any pop-ups, notifications, or other dynamic elements visible in the screenshot.

		Here's an example of a super detailed description:
		The webpage screenshot displays a well-organized layout with a prominent header, main content area, sidebar, and footer.
		Header:
		Logo: Positioned at the top-left corner, featuring a blue and white logo with the text "WebSiteName" in bold.
		Navigation Menu: To the right of the logo, a horizontal navigation menu includes links labeled "Home," "About Us," "Services," "Blog," and "Contact."
		Search Bar: Located at the top-right corner, the search bar has a placeholder text "Search..." and a magnifying glass icon.
		Main Content Area:
		Hero Section: A large banner image of a cityscape with an overlaying text "Welcome to Our Website" in white, bold, and a larger font size.
		Article Section: Below the hero section, a two-column layout displays the latest articles, each with a thumbnail, a bold title, a snippet and a "Read More" link.
		Sidebar:
		Popular Posts: A list of links to popular blog posts with thumbnail images and brief descriptions.
		Footer:
		Social Media Links: Icons for Facebook, Twitter, Instagram, and LinkedIn on the left.
		Copyright Information: Centered at the bottom, a text reads "© 2024 WebSiteName. All rights reserved."
		Colors and Themes:
		Primary Colors: A palette of blue, white, and grey with a light grey background and dark grey text.

		Respond with the description only.
	`
}
